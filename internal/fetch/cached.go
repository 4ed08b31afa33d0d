package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultDescriptionCacheTTL is how long enrichment text stays cached.
const DefaultDescriptionCacheTTL = 7 * 24 * time.Hour

// Describer fetches the description text of a detail page.
type Describer interface {
	Describe(ctx context.Context, detailURL string) (string, error)
}

// DescriptionCache stores description text keyed by detail page URL.
type DescriptionCache interface {
	Get(ctx context.Context, detailURL string) (string, bool, error)
	Set(ctx context.Context, detailURL, text string) error
}

// RedisDescriptionCache is a DescriptionCache backed by Redis string keys with a TTL.
type RedisDescriptionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisDescriptionCache connects to redisURL (redis://host:port/db) and pings it.
func NewRedisDescriptionCache(ctx context.Context, redisURL string, ttl time.Duration) (*RedisDescriptionCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultDescriptionCacheTTL
	}
	return &RedisDescriptionCache{client: client, prefix: "jobscraper:desc:", ttl: ttl}, nil
}

func (c *RedisDescriptionCache) key(detailURL string) string {
	sum := sha256.Sum256([]byte(detailURL))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get implements DescriptionCache.
func (c *RedisDescriptionCache) Get(ctx context.Context, detailURL string) (string, bool, error) {
	text, err := c.client.Get(ctx, c.key(detailURL)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Set implements DescriptionCache.
func (c *RedisDescriptionCache) Set(ctx context.Context, detailURL, text string) error {
	return c.client.Set(ctx, c.key(detailURL), text, c.ttl).Err()
}

// Close releases the Redis connection pool.
func (c *RedisDescriptionCache) Close() error {
	return c.client.Close()
}

// CachedDescriber wraps a Describer with a DescriptionCache. Cache failures never fail a fetch.
type CachedDescriber struct {
	inner  Describer
	cache  DescriptionCache
	logger *slog.Logger
}

// NewCachedDescriber creates a CachedDescriber.
func NewCachedDescriber(inner Describer, cache DescriptionCache, logger *slog.Logger) *CachedDescriber {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CachedDescriber{inner: inner, cache: cache, logger: logger}
}

// Describe returns cached text when present, otherwise fetches and stores non-empty text.
func (d *CachedDescriber) Describe(ctx context.Context, detailURL string) (string, error) {
	text, ok, err := d.cache.Get(ctx, detailURL)
	if err != nil {
		d.logger.Warn("description cache read failed", "url", detailURL, "error", err)
	} else if ok {
		return text, nil
	}

	text, err = d.inner.Describe(ctx, detailURL)
	if err != nil {
		return "", err
	}
	if text != "" {
		if err := d.cache.Set(ctx, detailURL, text); err != nil {
			d.logger.Warn("description cache write failed", "url", detailURL, "error", err)
		}
	}
	return text, nil
}
