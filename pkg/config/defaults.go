package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "0.0.0.0:8000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultRequestTimeout  = 45 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB
	DefaultMaxBodyBytes    = int64(1048576)
	DefaultAPIKeyHeader    = "X-API-Key"
	DefaultCORSMaxAge      = 3600
	DefaultTLSMinVersion   = "1.2"
	DefaultTLSReload       = 5 * time.Minute

	// Provider defaults
	DefaultProviderTimeout = 30 * time.Second
	DefaultOpenAIModel     = "gpt-3.5-turbo"
	DefaultAnthropicModel  = "claude-3-5-haiku-latest"

	// Analysis defaults
	DefaultAnalysisProvider    = "openai"
	DefaultAnalysisTimeout     = 30 * time.Second
	DefaultAnalysisTemperature = 0.3
	DefaultAnalysisMaxTokens   = 300
	DefaultMinTextLength       = 5
	DefaultMaxTextLength       = 5000

	// Cache defaults
	DefaultCacheBackend    = "memory"
	DefaultCacheTTL        = time.Hour
	DefaultCacheMaxEntries = 10000

	// Limits defaults
	DefaultRateLimitBackend      = "memory"
	DefaultRateLimitRequests     = 30
	DefaultRateLimitWindow       = 60 * time.Second
	DefaultRateLimitIdleTimeout  = 10 * time.Minute
	DefaultRateLimitReapInterval = time.Minute
	DefaultQuotaPlan             = "free"
	DefaultQuotaLimit            = 100

	// Storage defaults
	DefaultStorageURL          = "sqlite://./feedback.db"
	DefaultStorageMaxOpenConns = 10
	DefaultStorageBusyTimeout  = 5 * time.Second

	// Retention defaults
	DefaultRetentionSchedule = "0 3 * * *"

	// Redis defaults
	DefaultRedisKeyPrefix = "feedback:"

	// Secrets defaults
	DefaultSecretsEnvPrefix = "FEEDBACK_SECRET_"
	DefaultSecretsCacheTTL  = 5 * time.Minute

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "feedback"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "feedback-analyzer"
)

// Default returns a configuration with every field set to its default.
// YAML files are decoded on top of this value so that booleans which default
// to true can still be switched off explicitly.
func Default() *Config {
	cfg := &Config{
		Server: ServerConfig{
			CORS: CORSConfig{Enabled: true},
		},
		Telemetry: TelemetryConfig{
			Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any configuration fields that are
// zero. It is idempotent.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.APIKeyHeader == "" {
		cfg.Server.APIKeyHeader = DefaultAPIKeyHeader
	}
	applyCORSDefaults(&cfg.Server.CORS)
	if cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = DefaultTLSMinVersion
	}
	if cfg.Server.TLS.ReloadInterval == 0 {
		cfg.Server.TLS.ReloadInterval = DefaultTLSReload
	}

	// Provider defaults - applied to each provider
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for name, provider := range cfg.Providers {
		if provider.Type == "" {
			provider.Type = name
		}
		if provider.Timeout == 0 {
			provider.Timeout = DefaultProviderTimeout
		}
		if provider.Model == "" {
			switch provider.Type {
			case "openai":
				provider.Model = DefaultOpenAIModel
			case "anthropic":
				provider.Model = DefaultAnthropicModel
			}
		}
		cfg.Providers[name] = provider
	}

	// Analysis defaults
	if cfg.Analysis.Provider == "" {
		cfg.Analysis.Provider = DefaultAnalysisProvider
	}
	if cfg.Analysis.Timeout == 0 {
		cfg.Analysis.Timeout = DefaultAnalysisTimeout
	}
	if cfg.Analysis.Temperature == 0 {
		cfg.Analysis.Temperature = DefaultAnalysisTemperature
	}
	if cfg.Analysis.MaxTokens == 0 {
		cfg.Analysis.MaxTokens = DefaultAnalysisMaxTokens
	}
	if cfg.Analysis.MinTextLength == 0 {
		cfg.Analysis.MinTextLength = DefaultMinTextLength
	}
	if cfg.Analysis.MaxTextLength == 0 {
		cfg.Analysis.MaxTextLength = DefaultMaxTextLength
	}

	// Cache defaults
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}

	// Limits defaults
	rl := &cfg.Limits.RateLimit
	if rl.Backend == "" {
		rl.Backend = DefaultRateLimitBackend
	}
	if rl.Requests == 0 {
		rl.Requests = DefaultRateLimitRequests
	}
	if rl.Window == 0 {
		rl.Window = DefaultRateLimitWindow
	}
	if rl.IdleTimeout == 0 {
		rl.IdleTimeout = DefaultRateLimitIdleTimeout
	}
	if rl.ReapInterval == 0 {
		rl.ReapInterval = DefaultRateLimitReapInterval
	}
	if cfg.Limits.Quota.DefaultPlan == "" {
		cfg.Limits.Quota.DefaultPlan = DefaultQuotaPlan
	}
	if cfg.Limits.Quota.DefaultLimit == 0 {
		cfg.Limits.Quota.DefaultLimit = DefaultQuotaLimit
	}

	// Storage defaults
	if cfg.Storage.URL == "" {
		cfg.Storage.URL = DefaultStorageURL
	}
	if cfg.Storage.MaxOpenConns == 0 {
		cfg.Storage.MaxOpenConns = DefaultStorageMaxOpenConns
	}
	if cfg.Storage.BusyTimeout == 0 {
		cfg.Storage.BusyTimeout = DefaultStorageBusyTimeout
	}

	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}

	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}
	if cfg.Secrets.CacheTTL == 0 {
		cfg.Secrets.CacheTTL = DefaultSecretsCacheTTL
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
}

// applyCORSDefaults fills CORS lists that were left empty.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-API-Key", "X-Request-ID"}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
			"Retry-After",
		}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
