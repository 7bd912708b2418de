package fileserver

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/felixge/httpsnoop"
)

// AccessTimeFormat is the timestamp layout of access log lines.
const AccessTimeFormat = "02/Jan/2006 15:04:05"

// Observer receives a record of every served request.
type Observer interface {
	ObserveRequest(method string, code int, size int64)
}

// withAccessLog writes one line per request: request line, status and body size.
func withAccessLog(next http.Handler, logger *log.Logger, observer Observer) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		m := httpsnoop.CaptureMetrics(next, rw, req)

		logger.Printf("\"%s %s %s\" %d %d", req.Method, req.RequestURI, req.Proto, m.Code, m.Written)
		if observer != nil {
			observer.ObserveRequest(req.Method, m.Code, m.Written)
		}
	})
}
