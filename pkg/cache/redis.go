package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"mercator-hq/feedback/pkg/telemetry/metrics"
)

const redisCacheName = "result_redis"

// RedisCache stores payloads as JSON in Redis, shared by every instance.
// Expiry is delegated to the key TTL.
type RedisCache struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration

	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewRedisCache creates a cache storing entries under
// keyPrefix + "cache:" + fingerprint.
func NewRedisCache(client redis.UniversalClient, keyPrefix string, ttl time.Duration, collector *metrics.Collector) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		metrics:   collector,
		logger:    slog.Default().With("component", "cache.redis"),
	}
}

func (c *RedisCache) key(fingerprint string) string {
	return c.keyPrefix + "cache:" + fingerprint
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, fingerprint string) (Payload, bool) {
	data, err := c.client.Get(ctx, c.key(fingerprint)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "cache lookup failed", "error", err)
		}
		c.metrics.RecordCacheMiss(redisCacheName)
		return Payload{}, false
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.WarnContext(ctx, "discarding corrupt cache entry", "fingerprint", fingerprint, "error", err)
		c.metrics.RecordCacheMiss(redisCacheName)
		return Payload{}, false
	}

	c.metrics.RecordCacheHit(redisCacheName)
	return p.Clone(), true
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, fingerprint string, payload Payload) error {
	if payload.Fallback {
		return ErrUncacheable
	}

	data, err := json.Marshal(payload.Clone())
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.key(fingerprint), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}
