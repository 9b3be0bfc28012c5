package cache

import (
	"context"
	"errors"
	"time"

	"decor-gallery/internal/observability"
)

// ProbeCache adapts a possibly absent RedisClient to the loader's cache
// interface. Without a client every lookup misses and writes are dropped, so
// the loader never fails because the cache is down.
type ProbeCache struct {
	client *RedisClient
	logger *observability.Logger
}

// NewProbeCache creates a probe cache; client may be nil
func NewProbeCache(client *RedisClient, logger *observability.Logger) *ProbeCache {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &ProbeCache{client: client, logger: logger.Component("cache")}
}

// Enabled reports whether a Redis client is attached
func (c *ProbeCache) Enabled() bool {
	return c.client != nil
}

// GetWinner returns the cached winner or ErrCacheMiss
func (c *ProbeCache) GetWinner(ctx context.Context, key string) (string, error) {
	if c.client == nil {
		return "", ErrCacheMiss
	}

	winner, err := c.client.GetWinner(ctx, key)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		c.logger.Warn(ctx).Err(err).Msg("Probe cache lookup failed")
	}
	return winner, err
}

// SetWinner stores a winner; failures are logged and swallowed
func (c *ProbeCache) SetWinner(ctx context.Context, key, winner string, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	if err := c.client.SetWinner(ctx, key, winner, ttl); err != nil {
		c.logger.Warn(ctx).Err(err).Str("winner", winner).Msg("Probe cache write failed")
	}
	return nil
}

// Health reports the Redis health; a detached cache is always healthy
func (c *ProbeCache) Health(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Health(ctx)
}
