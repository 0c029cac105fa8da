// Package cli consolidates the startup plumbing shared by cmd/triad
// and cmd/triad-worker.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"triad/internal/config"
	applog "triad/internal/log"
)

// Setup loads the optional .env file, builds the structured logger and
// loads the validated configuration. It exits the process on a
// configuration error since neither binary can run without one.
func Setup(app string) (*applog.Logger, *config.Config) {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).With("app", app)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return logger, cfg
}

// NotifyContext returns a context cancelled on SIGINT or SIGTERM.
func NotifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ShutdownTimeout bounds how long graceful shutdown may take.
const ShutdownTimeout = 30 * time.Second
