package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateAnalysis(&cfg.Analysis)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateLimits(&cfg.Limits)...)
	errs = append(errs, validateStorage(&cfg.Storage)...)
	errs = append(errs, validateRetention(&cfg.Retention)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if cfg.Cache.Backend == "redis" || cfg.Limits.RateLimit.Backend == "redis" {
		if cfg.Redis.URL == "" {
			errs = append(errs, FieldError{
				Field:   "redis.url",
				Message: "redis url is required when a redis backend is selected",
			})
		}
	}

	if cfg.Secrets.Watch && cfg.Secrets.Dir == "" {
		errs = append(errs, FieldError{
			Field:   "secrets.watch",
			Message: "watch requires secrets.dir",
		})
	}
	if cfg.Secrets.CacheTTL < 0 {
		errs = append(errs, FieldError{Field: "secrets.cache_ttl", Message: "cache_ttl must not be negative"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "read timeout must be positive"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "write timeout must be positive"})
	}
	if cfg.RequestTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.request_timeout", Message: "request timeout must be positive"})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "max body bytes must be non-negative"})
	}
	if strings.TrimSpace(cfg.APIKeyHeader) == "" {
		errs = append(errs, FieldError{Field: "server.api_key_header", Message: "api key header is required"})
	}

	if cfg.TLS.Enabled {
		if cfg.TLS.CertFile == "" {
			errs = append(errs, FieldError{Field: "server.tls.cert_file", Message: "cert file is required when tls is enabled"})
		}
		if cfg.TLS.KeyFile == "" {
			errs = append(errs, FieldError{Field: "server.tls.key_file", Message: "key file is required when tls is enabled"})
		}
	}
	if v := cfg.TLS.MinVersion; v != "" && v != "1.2" && v != "1.3" {
		errs = append(errs, FieldError{
			Field:   "server.tls.min_version",
			Message: fmt.Sprintf("unsupported tls version %q (must be 1.2 or 1.3)", v),
		})
	}

	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	for name, provider := range providers {
		prefix := fmt.Sprintf("providers.%s", name)

		switch provider.Type {
		case "openai", "anthropic":
		default:
			errs = append(errs, FieldError{
				Field:   prefix + ".type",
				Message: fmt.Sprintf("unsupported provider type %q (must be openai or anthropic)", provider.Type),
			})
		}

		if provider.BaseURL != "" {
			if _, err := url.ParseRequestURI(provider.BaseURL); err != nil {
				errs = append(errs, FieldError{
					Field:   prefix + ".base_url",
					Message: fmt.Sprintf("invalid URL format: %v", err),
				})
			}
		}

		if provider.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".timeout",
				Message: "timeout must be positive",
			})
		}
	}

	return errs
}

func validateAnalysis(cfg *AnalysisConfig) []FieldError {
	var errs []FieldError

	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "analysis.timeout", Message: "timeout must be positive"})
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, FieldError{Field: "analysis.temperature", Message: "temperature must be between 0 and 2"})
	}
	if cfg.MaxTokens <= 0 {
		errs = append(errs, FieldError{Field: "analysis.max_tokens", Message: "max tokens must be positive"})
	}
	if cfg.MinTextLength <= 0 {
		errs = append(errs, FieldError{Field: "analysis.min_text_length", Message: "min text length must be positive"})
	}
	if cfg.MaxTextLength < cfg.MinTextLength {
		errs = append(errs, FieldError{
			Field:   "analysis.max_text_length",
			Message: "max text length must not be smaller than min text length",
		})
	}

	return errs
}

func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, FieldError{
			Field:   "cache.backend",
			Message: fmt.Sprintf("invalid backend %q (must be memory or redis)", cfg.Backend),
		})
	}
	if cfg.TTL <= 0 {
		errs = append(errs, FieldError{Field: "cache.ttl", Message: "ttl must be positive"})
	}
	if cfg.MaxEntries <= 0 {
		errs = append(errs, FieldError{Field: "cache.max_entries", Message: "max entries must be positive"})
	}

	return errs
}

func validateLimits(cfg *LimitsConfig) []FieldError {
	var errs []FieldError

	rl := cfg.RateLimit
	switch rl.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, FieldError{
			Field:   "limits.rate_limit.backend",
			Message: fmt.Sprintf("invalid backend %q (must be memory or redis)", rl.Backend),
		})
	}
	if rl.Requests <= 0 {
		errs = append(errs, FieldError{Field: "limits.rate_limit.requests", Message: "requests must be positive"})
	}
	if rl.Window <= 0 {
		errs = append(errs, FieldError{Field: "limits.rate_limit.window", Message: "window must be positive"})
	}
	if rl.IdleTimeout < rl.Window {
		errs = append(errs, FieldError{
			Field:   "limits.rate_limit.idle_timeout",
			Message: "idle timeout must be at least the window length",
		})
	}
	if cfg.Quota.DefaultLimit < 0 {
		errs = append(errs, FieldError{Field: "limits.quota.default_limit", Message: "default limit must be non-negative"})
	}

	return errs
}

func validateStorage(cfg *StorageConfig) []FieldError {
	var errs []FieldError

	if cfg.URL == "" {
		errs = append(errs, FieldError{Field: "storage.url", Message: "storage url is required"})
		return errs
	}

	if i := strings.Index(cfg.URL, "://"); i > 0 {
		switch cfg.URL[:i] {
		case "sqlite", "sqlite3", "postgres", "postgresql", "memory", "file":
		default:
			errs = append(errs, FieldError{
				Field:   "storage.url",
				Message: fmt.Sprintf("unsupported scheme %q", cfg.URL[:i]),
			})
		}
	}

	if cfg.MaxOpenConns < 0 {
		errs = append(errs, FieldError{Field: "storage.max_open_conns", Message: "max open conns must be non-negative"})
	}

	return errs
}

func validateRetention(cfg *RetentionConfig) []FieldError {
	var errs []FieldError

	if cfg.Days < 0 {
		errs = append(errs, FieldError{Field: "retention.days", Message: "days must be non-negative"})
	}
	if cfg.Days > 0 {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "retention.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Logging.Level),
		})
	}

	switch strings.ToLower(cfg.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{Field: "telemetry.tracing.endpoint", Message: "endpoint is required when tracing is enabled"})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{Field: "telemetry.tracing.sample_ratio", Message: "sample ratio must be between 0 and 1"})
	}

	return errs
}
