package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"triad/internal/amqp"
	"triad/internal/cli"
	applog "triad/internal/log"
	"triad/internal/mirror"
	"triad/internal/storage"
	"triad/internal/worker"
)

func main() {
	logger, cfg := cli.Setup("triad-worker")
	logger = logger.WithComponent(applog.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	ctx, stop := cli.NotifyContext()
	defer stop()

	sheetsClient, err := mirror.NewSheetsFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)

	// The pending sweep only exists on the sqlite backend; with the flat
	// file the AMQP stream is the single mirror path.
	var repo *storage.SQLiteRepository
	if cfg.DataBackend == "sqlite" {
		repo, err = storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository",
				applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		logger.Info("Pending sweep enabled", "path", cfg.SQLiteDBPath)
	} else {
		logger.Info("Pending sweep disabled", applog.FieldBackend, cfg.DataBackend)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorWorker := worker.NewMirrorWorker(repo, sheetsClient, cfg.MirrorBatchSize)

	// Catch anything that was appended before the consumer came up.
	if err := mirrorWorker.ProcessPending(ctx); err != nil {
		logger.Error("Startup pending sweep failed", applog.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeDecisionLogged(gctx, func(msg *amqp.DecisionLoggedMessage) error {
			return mirrorWorker.HandleDecisionLogged(gctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.MirrorInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := mirrorWorker.ProcessPending(gctx); err != nil {
					logger.Error("Periodic pending sweep failed", applog.FieldError, err)
				}
			}
		}
	})

	logger.Info("Worker started", "queue", cfg.AMQPQueue, "interval", cfg.MirrorInterval.String())

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
