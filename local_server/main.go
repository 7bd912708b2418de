// Command local_server serves the visualization directory over plain HTTP
// with permissive CORS and caching disabled.
//
//	local_server [--port N] [--metrics-port N]
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/pelageech/browsergator/config"
	"github.com/pelageech/browsergator/fileserver"
	"github.com/pelageech/browsergator/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	console := log.New(os.Stdout)
	cfg := config.ParseServerArgs(os.Args[1:], console)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, console)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.ServerConfig, console *log.Logger) int {
	if cfg.Root == "" {
		root, err := config.ExecutableDir()
		if err != nil {
			console.Printf("❌ Error starting server: %v", err)
			return 1
		}
		cfg.Root = root
	}
	if err := cfg.Validate(validator.New()); err != nil {
		console.Printf("❌ Error starting server: %v", err)
		return 1
	}

	var opts []fileserver.Option
	if cfg.MetricsPort != 0 {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg, console)
		opts = append(opts, fileserver.WithObserver(m))

		go m.Observe(ctx, metrics.DefaultObserveFrequency)
		go serveMetrics(ctx, cfg.MetricsPort, reg, console)
	}

	server := fileserver.New(cfg, console, opts...)

	ln, err := server.Listen()
	if errors.Is(err, fileserver.ErrPortInUse) {
		console.Printf("❌ Port %d is already in use. Try a different port:", cfg.Port)
		console.Printf("   local_server --port %d", cfg.Port+1)
		return 1
	} else if err != nil {
		console.Printf("❌ Error starting server: %v", err)
		return 1
	}

	server.PrintBanner(ln)

	if err := server.Serve(ctx, ln); err != nil {
		console.Printf("❌ Unexpected error: %v", err)
		return 1
	}

	console.Print("")
	console.Print("🛑 Server stopped by user")
	return 0
}

func serveMetrics(ctx context.Context, port int, reg *prometheus.Registry, console *log.Logger) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metrics.Handler(reg),
	}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	console.Printf("📈 Metrics: http://localhost:%d/metrics", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		console.Warn("Metrics server stopped", "err", err)
	}
}
