// main is the entry point of the local stub backend: a development
// stand-in for the school API that serves the same route table on a
// SQLite file.
//
// STARTUP SEQUENCE:
//  1. Load configuration (YAML file and/or environment)
//  2. Initialise the logger
//  3. Connect to (and set up) the SQLite database
//  4. Register all HTTP routes
//  5. Start the HTTP server in a separate goroutine
//  6. Block until an OS signal (Ctrl+C / kill) arrives or the server fails
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	STORAGE_PATH=storage/stub.db HTTP_SERVER_ADDR=localhost:3000 go run ./cmd/stub-api
//
// or
//
//	go run ./cmd/stub-api --config=config/local.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aanand-mishra/school-admin/internal/config"
	"github.com/aanand-mishra/school-admin/internal/http/handlers/record"
	"github.com/aanand-mishra/school-admin/internal/http/middleware"
	"github.com/aanand-mishra/school-admin/internal/logger"
	"github.com/aanand-mishra/school-admin/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run starts the server and blocks until it stops. Every failure is
// logged before it is returned, and deferred cleanup runs on every path.
func run() error {
	// ── 1. Load Config ────────────────────────────────────────────────────
	configFlag := flag.String("config", "", "Path to the configuration YAML file")
	flag.Parse()
	cfg := config.MustLoadStub(config.Path(*configFlag))

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	log := logger.New(cfg.Env, os.Stdout)
	slog.SetDefault(log)

	log.Info("starting stub-api", slog.String("env", cfg.Env))

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	storage, err := sqlite.New(cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		return err
	}
	defer storage.Close()

	log.Info("storage initialised", slog.String("path", cfg.StoragePath))

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := http.NewServeMux()
	record.Register(router, storage, middleware.NewMetrics(reg))

	// ── 5. Create and start the HTTP Server ───────────────────────────────
	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── 6. Wait for Shutdown Signal or Server Failure ─────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	return serve(log, server, done)
}

// serve runs server until stop delivers a signal, then shuts it down
// gracefully (step 7). A listen failure is returned straight away.
func serve(log *slog.Logger, server *http.Server, stop <-chan os.Signal) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("address", server.Addr))

		// ErrServerClosed is returned after Shutdown and is expected.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
		log.Info("shutdown signal received, stopping server...")
	case err := <-serveErr:
		log.Error("server encountered an error", slog.String("error", err.Error()))
		return err
	}

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}
