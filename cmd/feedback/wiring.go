package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	"mercator-hq/feedback/pkg/analysis"
	"mercator-hq/feedback/pkg/cache"
	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/limits/ratelimit"
	"mercator-hq/feedback/pkg/providerfactory"
	"mercator-hq/feedback/pkg/security/auth"
	"mercator-hq/feedback/pkg/storage"
	"mercator-hq/feedback/pkg/telemetry/metrics"
)

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	store, err := storage.Open(ctx, cfg.Storage.URL, cfg.Storage.MaxOpenConns, cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return store, nil
}

func newAccounts(store storage.Store, cfg *config.Config) *auth.Accounts {
	return auth.NewAccounts(store, auth.Config{
		DefaultPlan:  cfg.Limits.Quota.DefaultPlan,
		DefaultLimit: cfg.Limits.Quota.DefaultLimit,
	})
}

// usesRedis reports whether any backend is configured to use Redis.
func usesRedis(cfg *config.Config) bool {
	return cfg.Cache.Backend == "redis" || cfg.Limits.RateLimit.Backend == "redis"
}

// newRedisClient connects to redis.url, which may be a redis:// URL or a
// bare host:port.
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(cfg.URL, "://") {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.URL}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// redisPinger adapts a Redis client to health.Pinger.
type redisPinger struct {
	client redis.UniversalClient
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func newCache(cfg *config.Config, client redis.UniversalClient, collector *metrics.Collector) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "redis":
		return cache.NewRedisCache(client, cfg.Redis.KeyPrefix, cfg.Cache.TTL, collector), nil
	default:
		return cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.MaxEntries, collector)
	}
}

// newLimiter returns the configured rate limiter. The in-memory limiter is
// also returned on its own so the caller can run its reaper.
func newLimiter(cfg *config.Config, client redis.UniversalClient, collector *metrics.Collector) (ratelimit.Checker, *ratelimit.Limiter) {
	rl := cfg.Limits.RateLimit
	lc := ratelimit.Config{
		Limit:        rl.Requests,
		Window:       rl.Window,
		IdleTimeout:  rl.IdleTimeout,
		ReapInterval: rl.ReapInterval,
	}

	if rl.Backend == "redis" {
		return ratelimit.NewRedisLimiter(client, cfg.Redis.KeyPrefix, lc, collector), nil
	}
	l := ratelimit.NewLimiter(lc, collector)
	return l, l
}

// newAnalyzer loads every provider with an API key and binds the one named
// by analysis.provider.
func newAnalyzer(cfg *config.Config, manager *providerfactory.Manager, collector *metrics.Collector) (*analysis.ProviderAnalyzer, error) {
	if err := manager.LoadFromConfig(providerfactory.ConfigsFromSettings(cfg.Providers)); err != nil {
		slog.Warn("some providers failed to initialize", "error", err)
	}

	provider, err := manager.GetProvider(cfg.Analysis.Provider)
	if err != nil {
		return nil, fmt.Errorf("analysis provider %q is not available (set providers.%s.api_key): %w",
			cfg.Analysis.Provider, cfg.Analysis.Provider, err)
	}

	return analysis.NewProviderAnalyzer(provider, cfg.Analysis.Temperature, cfg.Analysis.MaxTokens, collector), nil
}

// redactURL hides the password of a database URL for display.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
