package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sitepulse/packages/bootstrap"
	"sitepulse/packages/config"
	"sitepulse/packages/db"
	"sitepulse/packages/metrics"
	"sitepulse/packages/worker"
)

func main() {
	cfg, err := config.Load(true)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	bootstrap.SetupLogger(cfg, "audit-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("--- Starting SitePulse Audit Worker ---")

	storage, err := db.New(ctx, cfg.DatabaseURL, db.Config{JobTimeout: cfg.JobTimeout})
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	if err := storage.CreateSchema(ctx); err != nil {
		slog.Error("Failed to create schema", "error", err)
		os.Exit(1)
	}

	go metrics.ExposeMetrics(cfg.MetricsAddr)

	engine, cleanup := bootstrap.BuildEngine(cfg)
	defer cleanup()

	appWorker := worker.New(cfg, storage, engine)

	ticker := time.NewTicker(cfg.SleepInterval)
	defer ticker.Stop()

	stalledTicker := time.NewTicker(5 * time.Minute)
	defer stalledTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutdown signal received. Exiting...")
			return
		case <-ticker.C:
			slog.Debug("Worker cycle starting")
			if err := storage.RefreshPendingCount(ctx); err != nil {
				slog.Error("Failed to refresh pending count", "error", err)
			}
			appWorker.ProcessPending(ctx)
		case <-stalledTicker.C:
			if err := storage.ResetStalled(ctx); err != nil {
				slog.Error("Failed to reset stalled audits", "error", err)
			}
		}
	}
}
