package fileserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelageech/browsergator/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	methods []string
	codes   []int
}

func (o *recordingObserver) ObserveRequest(method string, code int, _ int64) {
	o.methods = append(o.methods, method)
	o.codes = append(o.codes, code)
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *bytes.Buffer, string) {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, MainPage), []byte("<html>globe</html>"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "data"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "fullcatalog.txt"), []byte("1 25544U\n"), 0o644))

	var access bytes.Buffer
	cfg := &config.ServerConfig{
		Port:           0,
		Root:           root,
		MaxConnections: config.DefaultMaxConnections,
	}
	opts = append([]Option{WithAccessLogger(log.New(&access))}, opts...)
	return New(cfg, log.New(io.Discard), opts...), &access, root
}

func assertFixedHeaders(t *testing.T, h http.Header) {
	t.Helper()
	assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", h.Get("Cache-Control"))
	assert.Equal(t, "no-cache", h.Get("Pragma"))
	assert.Equal(t, "0", h.Get("Expires"))
}

func TestHandler(t *testing.T) {
	s, _, _ := newTestServer(t)
	h := s.Handler()

	tests := []struct {
		name     string
		method   string
		path     string
		code     int
		contains string
	}{
		{
			name:     "existing file",
			method:   http.MethodGet,
			path:     "/" + MainPage,
			code:     http.StatusOK,
			contains: "globe",
		},
		{
			name:     "nested file",
			method:   http.MethodGet,
			path:     "/data/fullcatalog.txt",
			code:     http.StatusOK,
			contains: "25544U",
		},
		{
			name:   "head request",
			method: http.MethodHead,
			path:   "/" + MainPage,
			code:   http.StatusOK,
		},
		{
			name:   "missing file",
			method: http.MethodGet,
			path:   "/missing.js",
			code:   http.StatusNotFound,
		},
		{
			name:     "directory listing",
			method:   http.MethodGet,
			path:     "/data/",
			code:     http.StatusOK,
			contains: "fullcatalog.txt",
		},
		{
			name:   "directory without slash",
			method: http.MethodGet,
			path:   "/data",
			code:   http.StatusMovedPermanently,
		},
		{
			name:   "unsupported method",
			method: http.MethodPost,
			path:   "/" + MainPage,
			code:   http.StatusNotImplemented,
		},
		{
			name:   "preflight",
			method: http.MethodOptions,
			path:   "/",
			code:   http.StatusNotImplemented,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(test.method, test.path, nil))

			assert.Equal(t, test.code, rec.Code)
			assertFixedHeaders(t, rec.Header())
			if test.contains != "" {
				assert.Contains(t, rec.Body.String(), test.contains)
			}
		})
	}
}

func TestHandlerServesIndex(t *testing.T) {
	s, _, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("index page"), 0o644))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "index page", rec.Body.String())
	assertFixedHeaders(t, rec.Header())
}

func TestHandlerServesIndexFilesByName(t *testing.T) {
	s, _, root := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("root index"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data", "index.html"), []byte("data index"), 0o644))
	h := s.Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "root index", method: http.MethodGet, path: "/index.html", body: "root index"},
		{name: "nested index", method: http.MethodGet, path: "/data/index.html", body: "data index"},
		{name: "head index", method: http.MethodHead, path: "/index.html"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(test.method, test.path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("Location"))
			assert.Equal(t, test.body, rec.Body.String())
			assertFixedHeaders(t, rec.Header())
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing/index.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assertFixedHeaders(t, rec.Header())
}

func TestAccessLog(t *testing.T) {
	observer := &recordingObserver{}
	s, access, _ := newTestServer(t, WithObserver(observer))
	h := s.Handler()

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/"+MainPage, nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	out := access.String()
	assert.Contains(t, out, `"GET /index_daynight.html HTTP/1.1" 200 18`)
	assert.Contains(t, out, `"GET /nope HTTP/1.1" 404`)
	assert.Equal(t, []string{http.MethodGet, http.MethodGet}, observer.methods)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, observer.codes)
}

func TestListenPortInUse(t *testing.T) {
	busy, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer busy.Close()

	s, _, _ := newTestServer(t)
	s.Config().Port = busy.Addr().(*net.TCPAddr).Port

	_, err = s.Listen()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPortInUse))
}

func TestServe(t *testing.T) {
	s, _, _ := newTestServer(t)
	ln, err := s.Listen()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	resp, err := http.Get(fmt.Sprintf("http://localhost:%d/%s", port, MainPage))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<html>globe</html>", string(body))
	assertFixedHeaders(t, resp.Header)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	s, _, root := newTestServer(t)
	s.console = log.New(&buf)

	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	s.PrintBanner(ln)

	out := buf.String()
	assert.Contains(t, out, "Serving directory: "+root)
	assert.Contains(t, out, fmt.Sprintf("http://localhost:%d/%s", port, MainPage))
	assert.Contains(t, out, "Press Ctrl+C to stop the server")
}
