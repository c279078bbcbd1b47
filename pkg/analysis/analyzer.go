package analysis

import (
	"context"
	"strings"
	"time"

	"mercator-hq/feedback/pkg/providers"
	"mercator-hq/feedback/pkg/telemetry/metrics"
	"mercator-hq/feedback/pkg/telemetry/tracing"
)

// Analyzer sends one prompt to the external model and returns its raw
// text reply.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// ProviderAnalyzer adapts a providers.Provider to Analyzer.
type ProviderAnalyzer struct {
	provider    providers.Provider
	temperature float64
	maxTokens   int
	metrics     *metrics.Collector
}

// NewProviderAnalyzer wraps provider with the sampling settings used for
// every call. collector may be nil.
func NewProviderAnalyzer(provider providers.Provider, temperature float64, maxTokens int, collector *metrics.Collector) *ProviderAnalyzer {
	return &ProviderAnalyzer{
		provider:    provider,
		temperature: temperature,
		maxTokens:   maxTokens,
		metrics:     collector,
	}
}

// Analyze implements Analyzer. A reply with no text is an error.
func (a *ProviderAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	name, model := a.provider.GetName(), a.provider.GetModel()

	ctx, span := tracing.Start(ctx, "provider.complete")
	defer span.End()
	tracing.SetProviderAttributes(span, name, model)

	start := time.Now()
	resp, err := a.provider.SendCompletion(ctx, &providers.CompletionRequest{
		System:      SystemPrompt,
		Prompt:      prompt,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err == nil && strings.TrimSpace(resp.Content) == "" {
		err = providers.ErrEmptyResponse
	}

	a.metrics.RecordProviderCall(name, model, time.Since(start), err)
	a.metrics.UpdateProviderHealth(name, a.provider.IsHealthy())

	if err != nil {
		tracing.SetErrorAttributes(span, err, metrics.ErrorType(err))
		return "", err
	}

	tracing.SetTokenAttributes(span, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	tracing.SetStatus(span, nil)
	return resp.Content, nil
}
