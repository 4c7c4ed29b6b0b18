// students is the interactive console for student records.
//
//	go run ./cmd/students --config=config/local.yaml
//
// Logs go to stderr so they do not interleave with the menu on stdout.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/student-manager/internal/app"
	"github.com/aanand-mishra/student-manager/internal/config"
	"github.com/aanand-mishra/student-manager/internal/console"
	"github.com/aanand-mishra/student-manager/internal/service"
)

func main() {
	cfg := config.MustLoad()

	log := app.SetupLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.NewStorage(ctx, cfg)
	if err != nil {
		log.Error("failed to initialise storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	c := console.New(service.New(store, log), os.Stdin, os.Stdout)
	if err := c.Run(ctx); err != nil {
		log.Error("console stopped", slog.String("error", err.Error()))
	}
}
