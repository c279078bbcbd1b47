package providerfactory

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/providers"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   providers.ProviderConfig
		wantType string
	}{
		{
			name: "explicit openai",
			config: providers.ProviderConfig{
				Name:    "openai",
				Type:    "openai",
				BaseURL: "https://api.openai.com/v1/",
				APIKey:  "test-key",
				Timeout: 30 * time.Second,
			},
			wantType: providers.TypeOpenAI,
		},
		{
			name: "explicit anthropic",
			config: providers.ProviderConfig{
				Name:    "anthropic",
				Type:    "anthropic",
				APIKey:  "test-key",
				Timeout: 30 * time.Second,
			},
			wantType: providers.TypeAnthropic,
		},
		{
			name:     "inferred from name",
			config:   providers.ProviderConfig{Name: "claude", APIKey: "test-key"},
			wantType: providers.TypeAnthropic,
		},
		{
			name:     "custom name with explicit type",
			config:   providers.ProviderConfig{Name: "azure-gpt", Type: "openai", APIKey: "test-key"},
			wantType: providers.TypeOpenAI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			require.NoError(t, err)
			defer provider.Close()

			assert.Equal(t, tt.config.Name, provider.GetName())
			assert.Equal(t, tt.wantType, provider.GetType())
			assert.NotEmpty(t, provider.GetModel())
			assert.True(t, provider.IsHealthy())
		})
	}
}

func TestNewProvider_UnsupportedType(t *testing.T) {
	_, err := NewProvider(providers.ProviderConfig{Name: "ollama", APIKey: "k"})
	require.Error(t, err)

	var cfgErr *providers.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "type", cfgErr.Field)
}

func TestNewProvider_MissingAPIKey(t *testing.T) {
	_, err := NewProvider(providers.ProviderConfig{Name: "openai"})
	require.Error(t, err)

	var cfgErr *providers.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "api_key", cfgErr.Field)
}

func TestInferProviderType(t *testing.T) {
	tests := map[string]string{
		"openai":    providers.TypeOpenAI,
		"gpt":       providers.TypeOpenAI,
		"anthropic": providers.TypeAnthropic,
		"claude":    providers.TypeAnthropic,
		"mystery":   "mystery",
	}
	for name, want := range tests {
		assert.Equal(t, want, inferProviderType(name), name)
	}
}

func TestConfigsFromSettings(t *testing.T) {
	settings := map[string]config.ProviderConfig{
		"openai":    {APIKey: "sk-1", Model: "gpt-4o-mini", Timeout: 10 * time.Second},
		"anthropic": {Type: "anthropic", APIKey: "sk-2", BaseURL: "http://localhost:9999/"},
		"disabled":  {Type: "openai"},
	}

	configs := ConfigsFromSettings(settings)
	require.Len(t, configs, 2)

	assert.Equal(t, "anthropic", configs[0].Name)
	assert.Equal(t, "http://localhost:9999/", configs[0].BaseURL)

	assert.Equal(t, "openai", configs[1].Name)
	assert.Equal(t, "gpt-4o-mini", configs[1].Model)
	assert.Equal(t, 10*time.Second, configs[1].Timeout)
}
