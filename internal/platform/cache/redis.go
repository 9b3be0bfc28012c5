package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"decor-gallery/internal/config"
)

const winnerKeyPrefix = "gallery:probe:winner:"

var (
	// ErrCacheDisabled is returned when the cache is switched off in config
	ErrCacheDisabled = errors.New("cache is disabled")
	// ErrCacheMiss is returned when no winner is cached for a source
	ErrCacheMiss = errors.New("winner not found in cache")
)

// RedisClient caches fallback-chain winners in Redis
// Note: This works with both Redis and Valkey (Redis-compatible)
type RedisClient struct {
	client     *redis.Client
	defaultTTL time.Duration
}

// NewRedisClient creates a new Redis client with the provided configuration
func NewRedisClient(ctx context.Context, cfg config.CacheConfig) (*RedisClient, error) {
	if !cfg.Enabled {
		return nil, ErrCacheDisabled
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		DB:              cfg.Database,
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: cfg.MinRetryBackoff,
		MaxRetryBackoff: cfg.MaxRetryBackoff,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis/Valkey: %w", err)
	}

	return NewRedisClientFrom(rdb, cfg.DefaultTTL), nil
}

// NewRedisClientFrom wraps an existing go-redis client
func NewRedisClientFrom(rdb *redis.Client, defaultTTL time.Duration) *RedisClient {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &RedisClient{
		client:     rdb,
		defaultTTL: defaultTTL,
	}
}

// GetWinner returns the cached winning candidate for a source key
func (r *RedisClient) GetWinner(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, winnerKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get winner from cache: %w", err)
	}
	return val, nil
}

// SetWinner caches the winning candidate for a source key. A zero ttl uses
// the configured default.
func (r *RedisClient) SetWinner(ctx context.Context, key, winner string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}

	if err := r.client.Set(ctx, winnerKeyPrefix+key, winner, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache winner: %w", err)
	}
	return nil
}

// DeleteWinner forgets the winner for a source key
func (r *RedisClient) DeleteWinner(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, winnerKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete winner from cache: %w", err)
	}
	return nil
}

// InvalidateWinners clears every cached winner, e.g. after a catalog import
func (r *RedisClient) InvalidateWinners(ctx context.Context) (int, error) {
	var deleted int
	iter := r.client.Scan(ctx, 0, winnerKeyPrefix+"*", 100).Iterator()

	batch := make([]string, 0, 100)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, batch...).Result()
		if err != nil {
			return fmt.Errorf("failed to delete cache keys: %w", err)
		}
		deleted += int(n)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if err := flush(); err != nil {
		return deleted, err
	}

	return deleted, nil
}

// Health checks if the Redis/Valkey connection is healthy
func (r *RedisClient) Health(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("Redis/Valkey health check failed: %w", err)
	}
	return nil
}

// Close closes the Redis/Valkey connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// FlushCache clears all cached data (use with caution)
func (r *RedisClient) FlushCache(ctx context.Context) error {
	if err := r.client.FlushDB(ctx).Err(); err != nil {
		return fmt.Errorf("failed to flush cache: %w", err)
	}
	return nil
}
