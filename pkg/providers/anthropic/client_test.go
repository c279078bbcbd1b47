package anthropic

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockproviders "mercator-hq/feedback/internal/providers"
	"mercator-hq/feedback/pkg/providers"
)

func newTestProvider(t *testing.T, ms *mockproviders.MockServer) *Provider {
	t.Helper()
	p, err := NewProvider(providers.ProviderConfig{
		Name:    "anthropic",
		BaseURL: ms.URL() + "/",
		APIKey:  "test-key",
		Model:   "claude-3-5-haiku-latest",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return p
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(providers.ProviderConfig{Name: "anthropic"})
	var cfgErr *providers.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "api_key", cfgErr.Field)

	p, err := NewProvider(providers.ProviderConfig{Name: "anthropic", APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.GetModel())
	assert.Equal(t, providers.TypeAnthropic, p.GetType())
}

func TestProvider_SendCompletion(t *testing.T) {
	ms := mockproviders.NewMockServer()
	defer ms.Close()

	content := mockproviders.AnalysisJSON("negative", 2, []string{"fix shipping"}, "Late delivery")
	ms.SetResponse(mockproviders.AnthropicMessagesPath, mockproviders.MockResponse{
		Body: mockproviders.MockAnthropicResponse(content, "claude-3-5-haiku-latest"),
	})

	p := newTestProvider(t, ms)
	resp, err := p.SendCompletion(context.Background(), &providers.CompletionRequest{
		System:      "You analyze feedback.",
		Prompt:      "Analyze: shipping took a month",
		Temperature: 0.3,
		MaxTokens:   300,
	})
	require.NoError(t, err)
	assert.Equal(t, content, resp.Content)
	assert.Equal(t, providers.FinishReasonStop, resp.FinishReason)
	assert.Equal(t, 30, resp.Usage.TotalTokens)

	reqs := ms.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "test-key", reqs[0].Header.Get("X-Api-Key"))
	assert.Equal(t, float64(300), reqs[0].Body["max_tokens"])
	assert.Equal(t, 0.3, reqs[0].Body["temperature"])
	assert.NotNil(t, reqs[0].Body["system"])
}

func TestProvider_Errors(t *testing.T) {
	ms := mockproviders.NewMockServer()
	defer ms.Close()
	ms.SetResponse(mockproviders.AnthropicMessagesPath, mockproviders.MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       mockproviders.MockAnthropicError("invalid x-api-key", "authentication_error"),
	})

	p := newTestProvider(t, ms)
	_, err := p.SendCompletion(context.Background(), &providers.CompletionRequest{Prompt: "hi"})

	var authErr *providers.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "anthropic", authErr.Provider)
	assert.Equal(t, 1, ms.GetRequestCount())
}

func TestNormalizeStopReason(t *testing.T) {
	assert.Equal(t, "stop", normalizeStopReason("end_turn"))
	assert.Equal(t, "stop", normalizeStopReason("stop_sequence"))
	assert.Equal(t, "length", normalizeStopReason("max_tokens"))
	assert.Equal(t, "tool_use", normalizeStopReason("tool_use"))
}
