package app

import (
	"io"
	"log/slog"
	"os"
)

// Environments understood by SetupLogger.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// SetupLogger returns a logger writing to stderr, configured for env.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func SetupLogger(env string) *slog.Logger {
	return newLogger(os.Stderr, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	switch env {
	case EnvProd:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case EnvStaging:
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
