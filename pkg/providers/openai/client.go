package openai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"mercator-hq/feedback/pkg/providers"
)

// DefaultModel is used when the configuration names none.
const DefaultModel = "gpt-3.5-turbo"

// Provider is the OpenAI adapter built on the official SDK.
// It implements providers.Provider using the Chat Completions API.
type Provider struct {
	*providers.HealthTracker

	client openai.Client
	config providers.ProviderConfig
	logger *slog.Logger
}

// NewProvider creates a new OpenAI provider instance.
func NewProvider(config providers.ProviderConfig) (*Provider, error) {
	if config.Name == "" {
		return nil, &providers.ConfigError{
			Provider: providers.TypeOpenAI,
			Field:    "name",
			Message:  "provider name is required",
		}
	}
	if config.APIKey == "" {
		return nil, &providers.ConfigError{
			Provider: config.Name,
			Field:    "api_key",
			Message:  "API key is required for OpenAI",
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
		client:        openai.NewClient(opts...),
		config:        config,
		logger:        slog.Default().With("component", "providers.openai", "provider", config.Name),
	}

	p.logger.Info("OpenAI provider initialized", "model", config.Model)

	return p, nil
}

// SendCompletion sends a chat completion request to OpenAI.
func (p *Provider) SendCompletion(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	resp, err := p.send(ctx, req)
	p.RecordResult(err)
	return resp, err
}

func (p *Provider) send(ctx context.Context, req *providers.CompletionRequest) (*providers.CompletionResponse, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.config.Model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.translateError(err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, &providers.ProviderError{
			Provider: p.config.Name,
			Message:  "empty completion",
			Cause:    providers.ErrEmptyResponse,
		}
	}

	choice := completion.Choices[0]
	resp := &providers.CompletionResponse{
		ID:           completion.ID,
		Model:        completion.Model,
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Usage: providers.TokenUsage{
			PromptTokens:     int(completion.Usage.PromptTokens),
			CompletionTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:      int(completion.Usage.TotalTokens),
		},
	}

	p.logger.DebugContext(ctx, "completion request succeeded",
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)

	return resp, nil
}

// translateError maps SDK errors onto the providers error types. Context
// errors pass through unchanged so callers can detect timeouts.
func (p *Provider) translateError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.Error
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

// GetType returns "openai".
func (p *Provider) GetType() string { return providers.TypeOpenAI }

// GetModel returns the configured model.
func (p *Provider) GetModel() string { return p.config.Model }

// Close is a no-op; the SDK client holds no resources beyond pooled connections.
func (p *Provider) Close() error { return nil }
