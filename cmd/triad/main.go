package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"triad/internal/amqp"
	"triad/internal/backend"
	"triad/internal/cli"
	apphttp "triad/internal/http"
	applog "triad/internal/log"
	"triad/internal/services"
)

func main() {
	logger, cfg := cli.Setup("triad")

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.New(bcfg, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize backend",
			applog.FieldError, err, applog.FieldBackend, bcfg.Type.String())
		os.Exit(1)
	}
	if res.Cleanup != nil {
		defer res.Cleanup()
	}
	logger.Info("Backend initialized", applog.FieldBackend, bcfg.Type.String())

	// Mirror publishing is optional: without AMQP_URL decisions stay
	// local only.
	var publisher services.DecisionPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("Mirror publishing enabled", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("Mirror publishing disabled - no AMQP_URL provided")
	}

	svc := services.NewDecisionService(res.Backend, res.Backend, publisher)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv := apphttp.NewServer(":"+cfg.Port, svc, logger, reg)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, stop := cli.NotifyContext()
	defer stop()

	go func() {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting triad server", "port", cfg.Port, applog.FieldBackend, bcfg.Type.String())
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
