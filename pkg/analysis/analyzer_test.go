package analysis

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mockproviders "mercator-hq/feedback/internal/providers"
	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/providers"
	"mercator-hq/feedback/pkg/providers/openai"
	"mercator-hq/feedback/pkg/telemetry/metrics"
)

func newOpenAIAnalyzer(t *testing.T, ms *mockproviders.MockServer, collector *metrics.Collector) *ProviderAnalyzer {
	t.Helper()
	p, err := openai.NewProvider(providers.ProviderConfig{
		Name:    "openai",
		BaseURL: ms.OpenAIBaseURL(),
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return NewProviderAnalyzer(p, 0.3, 300, collector)
}

func TestProviderAnalyzer_SendsSettings(t *testing.T) {
	ms := mockproviders.NewMockServer()
	defer ms.Close()

	content := mockproviders.AnalysisJSON("positive", 9, []string{"more colors"}, "Loves it")
	ms.SetResponse(mockproviders.OpenAIChatPath, mockproviders.MockResponse{
		Body: mockproviders.MockOpenAIResponse(content, "gpt-3.5-turbo"),
	})

	a := newOpenAIAnalyzer(t, ms, nil)
	raw, err := a.Analyze(context.Background(), BuildPrompt("Great product, love it!"))
	require.NoError(t, err)
	assert.Equal(t, content, raw)

	reqs := ms.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 0.3, reqs[0].Body["temperature"])
	assert.Equal(t, float64(300), reqs[0].Body["max_tokens"])

	result := Parse(raw)
	assert.Equal(t, KindParsed, result.Kind)
	assert.Equal(t, "positive", result.Payload.Sentiment)
}

func TestProviderAnalyzer_RecordsErrors(t *testing.T) {
	ms := mockproviders.NewMockServer()
	defer ms.Close()

	ms.SetResponse(mockproviders.OpenAIChatPath, mockproviders.MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       mockproviders.MockOpenAIError("upstream exploded", "server_error"),
	})

	collector := metrics.NewCollector(config.MetricsConfig{Enabled: true, Namespace: "test"}, prometheus.NewRegistry())
	a := newOpenAIAnalyzer(t, ms, collector)

	_, err := a.Analyze(context.Background(), "prompt")
	require.Error(t, err)

	assert.Equal(t, 1, testutil.CollectAndCount(collector.Registry(), "test_provider_errors_total"))
}

func TestProviderAnalyzer_Timeout(t *testing.T) {
	ms := mockproviders.NewMockServer()
	defer ms.Close()

	ms.SetResponse(mockproviders.OpenAIChatPath, mockproviders.MockResponse{
		Delay: time.Second,
		Body:  mockproviders.MockOpenAIResponse("{}", "gpt-3.5-turbo"),
	})

	a := newOpenAIAnalyzer(t, ms, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := a.Analyze(ctx, "prompt")
	require.Error(t, err)
	assert.Equal(t, "timeout", metrics.ErrorType(err))
}

func TestService_EndToEndWithProvider(t *testing.T) {
	ms := mockproviders.NewMockServer()
	defer ms.Close()

	ms.SetResponse(mockproviders.OpenAIChatPath, mockproviders.MockResponse{
		Body: mockproviders.MockOpenAIResponse(
			"```json\n"+mockproviders.AnalysisJSON("Positive", 8, []string{"ship faster"}, "Happy")+"\n```",
			"gpt-3.5-turbo",
		),
	})

	f := newFixture(t, "", 0, 100)
	f.service.analyzer = newOpenAIAnalyzer(t, ms, nil)

	ctx := context.Background()
	out, err := f.service.Analyze(ctx, f.account, "Great product, love it!")
	require.NoError(t, err)
	assert.Equal(t, "positive", out.Payload.Sentiment)
	assert.Equal(t, 8, out.Payload.Score)

	again, err := f.service.Analyze(ctx, f.account, "Great product, love it!")
	require.NoError(t, err)
	assert.True(t, again.CacheHit)
	assert.Equal(t, out.Payload, again.Payload)
	assert.Equal(t, 1, ms.GetRequestCount())
}
