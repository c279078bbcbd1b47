package providerfactory

import (
	"fmt"
	"log/slog"
	"sort"

	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/providers"
	"mercator-hq/feedback/pkg/providers/anthropic"
	"mercator-hq/feedback/pkg/providers/openai"
)

// NewProvider creates a new provider instance based on the configuration.
//
// Supported provider types:
//   - "openai": OpenAI chat completions
//   - "anthropic": Anthropic Messages API
//
// The provider type is taken from config.Type. If empty, it is inferred from
// the provider name.
//
// Example:
//
//	provider, err := NewProvider(providers.ProviderConfig{
//	    Name:   "openai",
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	})
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
func NewProvider(config providers.ProviderConfig) (providers.Provider, error) {
	providerType := config.Type
	if providerType == "" {
		providerType = inferProviderType(config.Name)
		config.Type = providerType
	}

	slog.Debug("creating provider",
		"name", config.Name,
		"type", providerType,
		"base_url", config.BaseURL,
	)

	var (
		provider providers.Provider
		err      error
	)

	switch providerType {
	case providers.TypeOpenAI:
		provider, err = openai.NewProvider(config)

	case providers.TypeAnthropic:
		provider, err = anthropic.NewProvider(config)

	default:
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "type",
			Message:  fmt.Sprintf("unsupported provider type: %q (supported: openai, anthropic)", providerType),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create provider %q: %w", config.Name, err)
	}

	slog.Info("provider created",
		"name", config.Name,
		"type", providerType,
		"model", provider.GetModel(),
	)

	return provider, nil
}

// ConfigsFromSettings converts the providers section of the service
// configuration into provider configs, sorted by name. Entries without an
// API key are skipped, so an unconfigured backend never fails startup.
func ConfigsFromSettings(settings map[string]config.ProviderConfig) []providers.ProviderConfig {
	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)

	configs := make([]providers.ProviderConfig, 0, len(names))
	for _, name := range names {
		s := settings[name]
		if s.APIKey == "" {
			slog.Debug("skipping provider without api key", "name", name)
			continue
		}
		configs = append(configs, providers.ProviderConfig{
			Name:    name,
			Type:    s.Type,
			BaseURL: s.BaseURL,
			APIKey:  s.APIKey,
			Model:   s.Model,
			Timeout: s.Timeout,
		})
	}
	return configs
}

// inferProviderType infers the provider type from the provider name.
// Unknown names are returned unchanged and rejected by NewProvider.
func inferProviderType(name string) string {
	switch name {
	case "openai", "gpt":
		return providers.TypeOpenAI
	case "anthropic", "claude":
		return providers.TypeAnthropic
	default:
		return name
	}
}
