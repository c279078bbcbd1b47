package anthropic

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"mercator-hq/feedback/pkg/providers"
)

const (
	// DefaultModel is used when the configuration names none.
	DefaultModel = "claude-3-5-haiku-latest"

	// DefaultMaxTokens is sent when the request leaves MaxTokens unset;
	// the Messages API requires a value.
	DefaultMaxTokens = 1024
)

// Provider is the Anthropic adapter built on the official SDK.
// It implements providers.Provider using the Messages API.
type Provider struct {
	*providers.HealthTracker

	client anthropic.Client
	config providers.ProviderConfig
	logger *slog.Logger
}

// NewProvider creates a new Anthropic provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: providers.TypeAnthropic,
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for Anthropic",
		}
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	p := &Provider{
		HealthTracker: providers.NewHealthTracker(),
		client:        anthropic.NewClient(opts...),
		config:        config,
		logger:        slog.Default().With("component", "providers.anthropic", "provider", config.Name),
	}

	p.logger.Info("Anthropic provider initialized", "model", config.Model)

	return p, nil
}

// SendCompletion sends a message request to Anthropic.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	resp, err := p.send(ctx, req)
	p.RecordResult(err)
	return resp, err
}

func (p *Provider) send(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	maxTokens := int64(req.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.config.Model),
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, p.translateError(err)
	}

	var content strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return nil, &providers.ProviderError{
			Provider: p.config.Name,
			Message:  "no text content in message",
			Cause:    providers.ErrEmptyResponse,
		}
	}

	resp := &providers.CompletionResponse{
		ID:           msg.ID,
		Model:        string(msg.Model),
		Content:      content.String(),
		FinishReason: normalizeStopReason(string(msg.StopReason)),
		Usage: providers.TokenUsage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}

	p.logger.DebugContext(ctx, "completion request succeeded",
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)

	return resp, nil
}

// normalizeStopReason maps Anthropic stop reasons onto the shared finish reasons.
func normalizeStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return providers.FinishReasonStop
	case "max_tokens":
		return providers.FinishReasonLength
	default:
		return reason
	}
}

// translateError maps SDK errors onto the providers error types. Context
// errors pass through unchanged so callers can detect timeouts.
func (p *Provider) translateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		var header http.Header
		if apiErr.Response != nil {
			header = apiErr.Response.Header
		}
		return providers.ClassifyStatus(p.config.Name, apiErr.StatusCode, apiErr.Error(), header, err)
	}

	return &providers.ProviderError{Provider: p.config.Name, Message: err.Error(), Cause: err}
}

// GetName returns the provider's configured name.
func (p *Provider) GetName() string { return p.config.Name }

// GetType returns "anthropic".
func (p *Provider) GetType() string { return providers.TypeAnthropic }

// GetModel returns the configured model.
func (p *Provider) GetModel() string { return p.config.Model }

// Close is a no-op; the SDK client holds no resources beyond pooled connections.
func (p *Provider) Close() error { return nil }
