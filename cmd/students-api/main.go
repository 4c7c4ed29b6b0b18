// main is the entry point of the Students API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the configured database (sqlite3, postgres or mysql)
//  4. Register all HTTP routes and /metrics
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aanand-mishra/student-manager/internal/app"
	"github.com/aanand-mishra/student-manager/internal/config"
	"github.com/aanand-mishra/student-manager/internal/http/handlers/student"
	"github.com/aanand-mishra/student-manager/internal/service"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// SetDefault makes the handlers' package-level slog calls use it too.
	log := app.SetupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", "1.0.0"),
	)

	// ── 3. Initialise Storage (Database) ──────────────────────────────────
	// The rest of the program only sees storage.Storage; the driver is a
	// config setting.
	store, err := app.NewStorage(context.Background(), cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	log.Info("storage initialised",
		slog.String("driver", cfg.Storage.Driver))

	svc := service.New(store, log)

	// ── 4. Register HTTP Routes ───────────────────────────────────────────
	router := http.NewServeMux()
	student.Register(router, svc)
	router.Handle("GET /metrics", promhttp.Handler())

	// ── 5. Create the HTTP Server ─────────────────────────────────────────
	server := &http.Server{
		Addr:    cfg.HTTPServer.Addr,
		Handler: router,

		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 6. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed after Shutdown().
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 7. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
