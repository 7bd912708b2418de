package fileserver

import (
	"io"
	"net/http"

	"github.com/felixge/httpsnoop"
)

// FixedHeaders are added to every response of the server, whatever its status.
var FixedHeaders = [][2]string{
	{"Access-Control-Allow-Origin", "*"},
	{"Access-Control-Allow-Methods", "GET, POST, OPTIONS"},
	{"Access-Control-Allow-Headers", "Content-Type"},
	{"Cache-Control", "no-cache, no-store, must-revalidate"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
}

func setFixedHeaders(h http.Header) {
	for _, kv := range FixedHeaders {
		h.Set(kv[0], kv[1])
	}
}

// withFixedHeaders sets FixedHeaders right before the status line is sent.
// http.ServeContent drops Cache-Control on its error paths, so setting the
// headers up front is not enough.
func withFixedHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		written := false
		header := rw.Header()
		apply := func() {
			if !written {
				written = true
				setFixedHeaders(header)
			}
		}

		wrapped := httpsnoop.Wrap(rw, httpsnoop.Hooks{
			WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
				return func(code int) {
					apply()
					next(code)
				}
			},
			Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
				return func(b []byte) (int, error) {
					apply()
					return next(b)
				}
			},
			ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
				return func(src io.Reader) (int64, error) {
					apply()
					return next(src)
				}
			},
		})

		setFixedHeaders(header)
		next.ServeHTTP(wrapped, req)
		apply()
	})
}

// allowMethods answers 501 to anything but GET and HEAD.
func allowMethods(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			http.Error(rw, "Unsupported method ("+req.Method+")", http.StatusNotImplemented)
			return
		}
		next.ServeHTTP(rw, req)
	})
}
