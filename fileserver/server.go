// Package fileserver implements the development static file server of the
// satellite visualization.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelageech/browsergator/config"
	"golang.org/x/net/netutil"
)

const (
	// MainPage is the entry point of the visualization.
	MainPage = "index_daynight.html"

	readTimeout     = 5 * time.Second
	shutdownTimeout = 5 * time.Second
)

// ErrPortInUse is returned by Listen when another process holds the port.
var ErrPortInUse = errors.New("port is already in use")

// Server serves the files of a single root directory.
type Server struct {
	config   *config.ServerConfig
	console  *log.Logger
	access   *log.Logger
	observer Observer
}

// Option customizes a Server.
type Option func(*Server)

// WithObserver reports every request to o.
func WithObserver(o Observer) Option {
	return func(s *Server) {
		s.observer = o
	}
}

// WithAccessLogger replaces the default stdout access logger.
func WithAccessLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.access = l
	}
}

// NewAccessLogger creates a logger that stamps every line with the request time.
func NewAccessLogger() *log.Logger {
	return log.NewWithOptions(os.Stdout, log.Options{
		ReportTimestamp: true,
		TimeFormat:      AccessTimeFormat,
	})
}

// New is the constructor of the Server. console receives the human-readable
// startup messages.
func New(cfg *config.ServerConfig, console *log.Logger, opts ...Option) *Server {
	s := &Server{
		config:  cfg,
		console: console,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.access == nil {
		s.access = NewAccessLogger()
	}
	return s
}

// Config returns the config the server was built with.
func (s *Server) Config() *config.ServerConfig {
	return s.config
}

// Handler returns the request handler without binding any socket.
func (s *Server) Handler() http.Handler {
	root := http.Dir(s.config.Root)
	files := serveIndexFiles(root, http.FileServer(root))
	return withAccessLog(withFixedHeaders(allowMethods(files)), s.access, s.observer)
}

// Listen binds the configured port on all interfaces. The listener accepts
// at most MaxConnections connections at once.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("%w: %w", ErrPortInUse, err)
		}
		return nil, err
	}
	return netutil.LimitListener(ln, s.config.MaxConnections), nil
}

// PrintBanner prints where the server is reachable.
func (s *Server) PrintBanner(ln net.Listener) {
	port := s.config.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}

	s.console.Print("🌍 BrowserGator Day/Night Shader Server")
	s.console.Printf("📍 Serving directory: %s", s.config.Root)
	s.console.Printf("🔗 Open your browser and go to: http://localhost:%d", port)
	s.console.Printf("📄 Main file: http://localhost:%d/%s", port, MainPage)
	s.console.Print("⏹️  Press Ctrl+C to stop the server")
	s.console.Print(strings.Repeat("-", 50))
}

// Serve handles connections from ln until ctx is done. Keep-alives are off,
// so each connection carries a single request.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: readTimeout,
	}
	srv.SetKeepAlivesEnabled(false)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
