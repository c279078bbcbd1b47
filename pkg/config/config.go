package config

import "time"

// Config is the root configuration structure for the feedback analyzer.
// It contains all configuration sections for the HTTP server, analysis
// providers, caching, admission limits, storage, and telemetry.
type Config struct {
	// Server contains HTTP server configuration including listen address,
	// timeouts, and CORS.
	Server ServerConfig `yaml:"server"`

	// Providers contains configuration for the LLM backends used to analyze
	// feedback. Keys are provider names (e.g., "openai", "anthropic").
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Analysis controls the orchestrator: which provider to call, the model
	// sampling settings, and input bounds.
	Analysis AnalysisConfig `yaml:"analysis"`

	// Cache configures the result cache keyed by text fingerprint.
	Cache CacheConfig `yaml:"cache"`

	// Limits contains rate limiting and quota configuration.
	Limits LimitsConfig `yaml:"limits"`

	// Storage configures the account and analysis record store.
	Storage StorageConfig `yaml:"storage"`

	// Retention configures scheduled pruning of old analysis records.
	Retention RetentionConfig `yaml:"retention"`

	// Redis configures the shared Redis connection used by the redis cache
	// and rate limit backends.
	Redis RedisConfig `yaml:"redis"`

	// Secrets configures resolution of ${secret:name} references in
	// provider API keys.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8000", "0.0.0.0:8000").
	// Default: "0.0.0.0:8000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must exceed the analysis timeout.
	// Default: 60s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// RequestTimeout bounds the whole handler chain for a single request.
	// Default: 45s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits JSON request bodies.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// APIKeyHeader is the request header carrying the account credential.
	// Default: "X-API-Key"
	APIKeyHeader string `yaml:"api_key_header"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`

	// TLS enables HTTPS termination in the server itself.
	TLS TLSConfig `yaml:"tls"`
}

// TLSConfig configures HTTPS termination.
type TLSConfig struct {
	// Enabled serves HTTPS instead of plain HTTP.
	Enabled bool `yaml:"enabled"`

	// CertFile is the path to the PEM encoded certificate chain.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM encoded private key.
	KeyFile string `yaml:"key_file"`

	// MinVersion is the minimum TLS version: "1.2" or "1.3".
	// Default: "1.2"
	MinVersion string `yaml:"min_version"`

	// ReloadInterval is how often the certificate files are checked for
	// changes. Renewed certificates are picked up without a restart.
	// Default: 5m
	ReloadInterval time.Duration `yaml:"reload_interval"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins. ["*"] allows all.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of response headers exposed to browsers.
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// ProviderConfig contains configuration for a single LLM provider.
type ProviderConfig struct {
	// Type selects the client implementation ("openai" or "anthropic").
	// Defaults to the provider name.
	Type string `yaml:"type"`

	// BaseURL overrides the provider's API endpoint. Empty uses the SDK default.
	BaseURL string `yaml:"base_url"`

	// APIKey is the authentication key for the provider.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier sent with each request.
	Model string `yaml:"model"`

	// Timeout is the per-request HTTP timeout applied by the client.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`
}

// AnalysisConfig configures the analysis orchestrator.
type AnalysisConfig struct {
	// Provider is the name of the entry in Providers used for analysis.
	// Default: "openai"
	Provider string `yaml:"provider"`

	// Timeout bounds a single external analysis call.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// Temperature is the sampling temperature.
	// Default: 0.3
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the completion length.
	// Default: 300
	MaxTokens int `yaml:"max_tokens"`

	// MinTextLength is the minimum accepted text length in characters.
	// Default: 5
	MinTextLength int `yaml:"min_text_length"`

	// MaxTextLength is the maximum accepted text length in characters.
	// Default: 5000
	MaxTextLength int `yaml:"max_text_length"`
}

// CacheConfig configures the analysis result cache.
type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// TTL is how long a cached analysis stays valid.
	// Default: 1h
	TTL time.Duration `yaml:"ttl"`

	// MaxEntries bounds the memory backend.
	// Default: 10000
	MaxEntries int `yaml:"max_entries"`
}

// LimitsConfig contains admission control configuration.
type LimitsConfig struct {
	// RateLimit configures the per-account sliding window.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Quota configures account quota defaults.
	Quota QuotaConfig `yaml:"quota"`
}

// RateLimitConfig configures the sliding-window rate limiter.
type RateLimitConfig struct {
	// Backend selects the limiter implementation: "memory" or "redis".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Requests is the number of requests admitted per window.
	// Default: 30
	Requests int `yaml:"requests"`

	// Window is the sliding window length.
	// Default: 60s
	Window time.Duration `yaml:"window"`

	// IdleTimeout is how long an identity may stay inactive before its
	// window is reclaimed.
	// Default: 10m
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ReapInterval is how often idle windows are reclaimed.
	// Default: 1m
	ReapInterval time.Duration `yaml:"reap_interval"`
}

// QuotaConfig configures account quotas.
type QuotaConfig struct {
	// DefaultPlan is the plan assigned to newly registered accounts.
	// Default: "free"
	DefaultPlan string `yaml:"default_plan"`

	// DefaultLimit is the lifetime request ceiling of new accounts.
	// Default: 100
	DefaultLimit int `yaml:"default_limit"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	// URL is the database location. Supported schemes: "sqlite://",
	// "sqlite3://" (cgo driver), "postgres://", "postgresql://", and
	// "memory://". A bare path is treated as a SQLite file.
	// Default: "sqlite://./feedback.db"
	URL string `yaml:"url"`

	// MaxOpenConns bounds the connection pool. SQLite always uses 1.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig configures pruning of analysis records.
type RetentionConfig struct {
	// Days is how many days of analysis records to keep. 0 keeps forever.
	// Default: 0
	Days int `yaml:"days"`

	// Schedule is the cron expression for pruning.
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL. A bare "host:port" is accepted.
	URL string `yaml:"url"`

	// KeyPrefix namespaces every key written by the service.
	// Default: "feedback:"
	KeyPrefix string `yaml:"key_prefix"`
}

// SecretsConfig configures where ${secret:name} references are looked up.
// The environment is consulted after the directory.
type SecretsConfig struct {
	// EnvPrefix is prepended to the upper-cased secret name, so
	// "openai-api-key" is read from FEEDBACK_SECRET_OPENAI_API_KEY.
	// Default: "FEEDBACK_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret, named after the secret. Files must be
	// mode 0600 or 0400. Empty disables file secrets.
	Dir string `yaml:"dir"`

	// Watch drops cached file secrets when the directory changes.
	Watch bool `yaml:"watch"`

	// CacheTTL bounds how long a resolved secret is reused.
	// Default: 5m
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains log output configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: json or text.
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace prefixes every metric name.
	// Default: "feedback"
	Namespace string `yaml:"namespace"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns on span export.
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address (e.g., "localhost:4317").
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// SampleRatio is the fraction of traces sampled, in [0,1].
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "feedback-analyzer"
	ServiceName string `yaml:"service_name"`
}
