package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedPageSpeed is a read-through redis cache in front of a PageSpeed
// provider. PSI lab runs are slow and rate limited; repeated audits of the
// same site within the TTL reuse the stored metrics. Redis being down is
// never an error: requests just pass through to the inner provider.
type CachedPageSpeed struct {
	inner PageSpeed
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedPageSpeed(inner PageSpeed, rdb *redis.Client, ttl time.Duration) *CachedPageSpeed {
	return &CachedPageSpeed{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(url string, strategy Strategy) string {
	return fmt.Sprintf("sitepulse:psi:%s:%s", strategy, url)
}

func (c *CachedPageSpeed) Metrics(ctx context.Context, url string, strategy Strategy) (PageSpeedMetrics, error) {
	key := cacheKey(url, strategy)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var m PageSpeedMetrics
		if err := json.Unmarshal(raw, &m); err == nil {
			slog.Debug("PageSpeed cache hit", "key", key)
			return m, nil
		}
	} else if err != redis.Nil {
		slog.Debug("PageSpeed cache read failed", "key", key, "error", err)
	}

	m, err := c.inner.Metrics(ctx, url, strategy)
	if err != nil {
		return m, err
	}

	if raw, err := json.Marshal(m); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			slog.Debug("PageSpeed cache write failed", "key", key, "error", err)
		}
	}
	return m, nil
}
