// Package config
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string
	ListenAddr  string
	MetricsAddr string

	BatchSize     int
	MaxWorkers    int
	SleepInterval time.Duration
	JobTimeout    time.Duration

	FetchTimeout time.Duration
	ProbeTimeout time.Duration
	UserAgent    string
	RenderMode   string // basic|full
	ChromePath   string

	PageSpeedAPIKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PSICacheTTL   time.Duration

	LogFile  string
	LogLevel string
}

// Load reads configuration from the environment. DATABASE_URL is required
// for the worker and server; the one-shot CLI loads with requireDB=false.
func Load(requireDB bool) (Config, error) {
	cfg := Config{}

	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	if requireDB && cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("missing required environment variable: DATABASE_URL")
	}

	cfg.ListenAddr = getEnv("LISTEN_ADDR", ":8080")
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "0.0.0.0:9091")

	var err error
	cfg.BatchSize, err = strconv.Atoi(getEnv("BATCH_SIZE", "20"))
	if err != nil {
		slog.Warn("Invalid BATCH_SIZE", "value", getEnv("BATCH_SIZE", "20"), "error", err)
		cfg.BatchSize = 20
	}
	cfg.MaxWorkers, _ = strconv.Atoi(getEnv("MAX_WORKERS", "8"))
	cfg.SleepInterval, _ = time.ParseDuration(getEnv("SLEEP_INTERVAL", "5s"))
	cfg.JobTimeout, _ = time.ParseDuration(getEnv("JOB_TIMEOUT", "5m"))

	cfg.FetchTimeout, _ = time.ParseDuration(getEnv("FETCH_TIMEOUT", "30s"))
	cfg.ProbeTimeout, _ = time.ParseDuration(getEnv("PROBE_TIMEOUT", "10s"))
	cfg.UserAgent = getEnv("USER_AGENT", "SitePulseAuditBot/1.0 (+https://sitepulse.example/bot)")

	cfg.RenderMode = strings.ToLower(getEnv("RENDER_MODE", "basic"))
	if cfg.RenderMode != "basic" && cfg.RenderMode != "full" {
		slog.Warn("Invalid RENDER_MODE, falling back to basic", "value", cfg.RenderMode)
		cfg.RenderMode = "basic"
	}
	cfg.ChromePath = getEnv("CHROME_PATH", "")

	cfg.PageSpeedAPIKey = getEnv("PAGESPEED_API_KEY", "")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB, _ = strconv.Atoi(getEnv("REDIS_DB", "0"))
	cfg.PSICacheTTL, _ = time.ParseDuration(getEnv("PSI_CACHE_TTL", "1h"))

	cfg.LogFile = getEnv("LOG_FILE", "logs/sitepulse.log")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
