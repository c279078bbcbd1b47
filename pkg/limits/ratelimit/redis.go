package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/telemetry/metrics"
)

// slidingWindowScript implements the same sliding window log as Limiter on
// a sorted set scored by millisecond timestamps. It runs atomically on the
// server, so concurrent instances share one window per identity.
//
// Returns {allowed, count, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit  = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end

if count >= limit then
  return {0, count, oldest}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
return {1, count + 1, oldest}
`)

// RedisLimiter is a sliding window limiter backed by Redis, for
// deployments running more than one instance. Idle windows expire through
// PEXPIRE, so no reaper is needed.
type RedisLimiter struct {
	client    redis.UniversalClient
	config    Config
	keyPrefix string

	now     func() time.Time
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewRedisLimiter creates a limiter that stores windows under
// keyPrefix + "ratelimit:" + identity.
func NewRedisLimiter(client redis.UniversalClient, keyPrefix string, config Config, collector *metrics.Collector) *RedisLimiter {
	return &RedisLimiter{
		client:    client,
		config:    config.withDefaults(),
		keyPrefix: keyPrefix,
		now:       time.Now,
		metrics:   collector,
		logger:    slog.Default().With("component", "ratelimit.redis"),
	}
}

// Check implements Checker.
func (l *RedisLimiter) Check(ctx context.Context, identity string) (Decision, error) {
	now := l.now()
	nowMs := now.UnixMilli()
	windowMs := l.config.Window.Milliseconds()

	res, err := slidingWindowScript.Run(ctx, l.client,
		[]string{l.keyPrefix + "ratelimit:" + identity},
		nowMs, windowMs, l.config.Limit, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: rate check: %v", limits.ErrStorageFailure, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("%w: unexpected rate script reply %v", limits.ErrStorageFailure, res)
	}

	allowed, count := res[0] == 1, int(res[1])
	reset := time.UnixMilli(res[2]).Add(l.config.Window)

	d := Decision{
		Allowed: allowed,
		Info: limits.RateLimitInfo{
			Limit:     l.config.Limit,
			Remaining: max(l.config.Limit-count, 0),
			Reset:     reset,
			Window:    l.config.Window,
		},
	}
	l.metrics.RecordRateLimitCheck("redis", allowed)

	if !allowed {
		d.RetryAfter = max(reset.Sub(now), 0)
		l.logger.DebugContext(ctx, "rate limit exceeded",
			"identity", identity,
			"retry_after", d.RetryAfter,
		)
		return d, limits.NewRateLimitError(identity, d.Info, d.RetryAfter)
	}
	return d, nil
}
