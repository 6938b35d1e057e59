// Package bootstrap wires shared process setup for the worker, server, and
// CLI entrypoints.
package bootstrap

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"

	"sitepulse/packages/audit"
	"sitepulse/packages/config"
	"sitepulse/packages/fetcher"
	"sitepulse/packages/providers"
)

// SetupLogger installs a JSON slog default writing to stdout and a rotated
// log file.
func SetupLogger(cfg config.Config, service string) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logDir := filepath.Dir(cfg.LogFile)
	if err := os.MkdirAll(logDir, 0750); err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error(
			"Failed to create log directory", "path", logDir, "error", err,
		)
	}

	logRotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}

	multiWriter := io.MultiWriter(os.Stdout, logRotator)

	handler := slog.NewJSONHandler(multiWriter, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		},
	}).WithAttrs([]slog.Attr{slog.String("service", service)})

	slog.SetDefault(slog.New(handler))
}

// BuildProviders selects the provider set from configuration: PSI when a
// key is present (redis-cached when redis is configured), unavailable
// otherwise. The mobile-friendliness hook stays unavailable until a
// replacement for the retired Google API is wired in.
func BuildProviders(cfg config.Config) providers.Set {
	set := providers.NoneAvailable()
	if cfg.PageSpeedAPIKey == "" {
		return set
	}

	var psi providers.PageSpeed = providers.NewGooglePSI(cfg.PageSpeedAPIKey, cfg.FetchTimeout)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		psi = providers.NewCachedPageSpeed(psi, rdb, cfg.PSICacheTTL)
		slog.Info("PageSpeed provider enabled with redis cache", "addr", cfg.RedisAddr)
	} else {
		slog.Info("PageSpeed provider enabled")
	}
	set.PageSpeed = psi
	return set
}

// BuildEngine assembles the audit engine for the configured render mode.
// The returned cleanup releases the browser allocator when one was started.
func BuildEngine(cfg config.Config) (*audit.Engine, func()) {
	basic := fetcher.New(cfg.FetchTimeout, cfg.ProbeTimeout, cfg.UserAgent)

	var rendered audit.PageFetcher
	cleanup := func() {}
	if cfg.RenderMode == "full" {
		r := fetcher.NewRenderer(cfg.FetchTimeout, cfg.UserAgent, cfg.ChromePath)
		rendered = r
		cleanup = r.Close
		slog.Info("Rendered fetch mode enabled")
	}

	return audit.NewEngine(basic, rendered, basic, BuildProviders(cfg)), cleanup
}
