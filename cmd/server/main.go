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

	"sitepulse/packages/api"
	"sitepulse/packages/bootstrap"
	"sitepulse/packages/config"
	"sitepulse/packages/db"
	"sitepulse/packages/metrics"
)

func main() {
	cfg, err := config.Load(true)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	bootstrap.SetupLogger(cfg, "audit-server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("--- Starting SitePulse API Server ---")

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

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.New(storage, engine).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Listening", "address", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutdown signal received. Draining...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
