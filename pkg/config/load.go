package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(path, cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. A missing file is not an error: defaults
// and the environment are used instead, so the server can run from
// environment variables alone.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from file, if present
// 3. Apply environment variable overrides
// 4. Fill any remaining defaults and validate
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(path, cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// decodeFile decodes the YAML file at path on top of cfg. An empty path is
// reported as fs.ErrNotExist.
func decodeFile(path string, cfg *Config) error {
	if path == "" {
		return fmt.Errorf("no configuration file given: %w", fs.ErrNotExist)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Service variables use the format FEEDBACK_SECTION_FIELD. The conventional
// variables DATABASE_URL, REDIS_URL, PORT, OPENAI_API_KEY and ANTHROPIC_API_KEY
// are honored as well; the FEEDBACK_ forms win when both are set.
func applyEnvOverrides(cfg *Config) {
	// Conventional variables first so the namespaced ones take precedence.
	if val := os.Getenv("PORT"); val != "" {
		cfg.Server.ListenAddress = "0.0.0.0:" + val
	}
	if val := os.Getenv("DATABASE_URL"); val != "" {
		cfg.Storage.URL = val
	}
	if val := os.Getenv("REDIS_URL"); val != "" {
		cfg.Redis.URL = val
	}
	setProviderKey(cfg, "openai", os.Getenv("OPENAI_API_KEY"))
	setProviderKey(cfg, "anthropic", os.Getenv("ANTHROPIC_API_KEY"))

	// Server overrides
	if val := os.Getenv("FEEDBACK_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	setDuration("FEEDBACK_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	setDuration("FEEDBACK_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	setDuration("FEEDBACK_SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	setDuration("FEEDBACK_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if val := os.Getenv("FEEDBACK_SERVER_API_KEY_HEADER"); val != "" {
		cfg.Server.APIKeyHeader = val
	}

	// Provider overrides
	applyProviderEnvOverrides(cfg, "openai")
	applyProviderEnvOverrides(cfg, "anthropic")

	// Analysis overrides
	if val := os.Getenv("FEEDBACK_ANALYSIS_PROVIDER"); val != "" {
		cfg.Analysis.Provider = val
	}
	setDuration("FEEDBACK_ANALYSIS_TIMEOUT", &cfg.Analysis.Timeout)
	if val := os.Getenv("FEEDBACK_ANALYSIS_TEMPERATURE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Analysis.Temperature = f
		}
	}
	setInt("FEEDBACK_ANALYSIS_MAX_TOKENS", &cfg.Analysis.MaxTokens)

	// Cache overrides
	if val := os.Getenv("FEEDBACK_CACHE_BACKEND"); val != "" {
		cfg.Cache.Backend = val
	}
	setDuration("FEEDBACK_CACHE_TTL", &cfg.Cache.TTL)
	setInt("FEEDBACK_CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries)

	// Limits overrides
	if val := os.Getenv("FEEDBACK_LIMITS_RATE_LIMIT_BACKEND"); val != "" {
		cfg.Limits.RateLimit.Backend = val
	}
	setInt("FEEDBACK_LIMITS_RATE_LIMIT_REQUESTS", &cfg.Limits.RateLimit.Requests)
	setDuration("FEEDBACK_LIMITS_RATE_LIMIT_WINDOW", &cfg.Limits.RateLimit.Window)
	setInt("FEEDBACK_LIMITS_QUOTA_DEFAULT_LIMIT", &cfg.Limits.Quota.DefaultLimit)

	// Storage overrides
	if val := os.Getenv("FEEDBACK_STORAGE_URL"); val != "" {
		cfg.Storage.URL = val
	}

	// Retention overrides
	setInt("FEEDBACK_RETENTION_DAYS", &cfg.Retention.Days)
	if val := os.Getenv("FEEDBACK_RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}

	// Redis overrides
	if val := os.Getenv("FEEDBACK_REDIS_URL"); val != "" {
		cfg.Redis.URL = val
	}

	if val := os.Getenv("FEEDBACK_SECRETS_DIR"); val != "" {
		cfg.Secrets.Dir = val
	}

	// Telemetry overrides
	if val := os.Getenv("FEEDBACK_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("FEEDBACK_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	setBool("FEEDBACK_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setBool("FEEDBACK_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	if val := os.Getenv("FEEDBACK_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

// applyProviderEnvOverrides applies environment variable overrides for a specific provider.
// Provider environment variables follow the format FEEDBACK_PROVIDERS_<NAME>_<FIELD>
// where NAME is the uppercase provider name.
func applyProviderEnvOverrides(cfg *Config, providerName string) {
	provider, exists := cfg.Providers[providerName]

	prefix := fmt.Sprintf("FEEDBACK_PROVIDERS_%s_", strings.ToUpper(providerName))
	modified := false

	if val := os.Getenv(prefix + "BASE_URL"); val != "" {
		provider.BaseURL = val
		modified = true
	}
	if val := os.Getenv(prefix + "API_KEY"); val != "" {
		provider.APIKey = val
		modified = true
	}
	if val := os.Getenv(prefix + "MODEL"); val != "" {
		provider.Model = val
		modified = true
	}
	if val := os.Getenv(prefix + "TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			provider.Timeout = d
			modified = true
		}
	}

	// Only update the map if we found at least one override
	if modified || exists {
		if cfg.Providers == nil {
			cfg.Providers = make(map[string]ProviderConfig)
		}
		cfg.Providers[providerName] = provider
	}
}

// setProviderKey sets the API key of a provider, creating the entry when the
// key is present but the provider was not configured in the file.
func setProviderKey(cfg *Config, providerName, key string) {
	if key == "" {
		return
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	provider := cfg.Providers[providerName]
	provider.APIKey = key
	cfg.Providers[providerName] = provider
}

func setDuration(name string, dst *time.Duration) {
	if val := os.Getenv(name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func setInt(name string, dst *int) {
	if val := os.Getenv(name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func setBool(name string, dst *bool) {
	if val := os.Getenv(name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}
