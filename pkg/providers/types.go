package providers

import "time"

// CompletionRequest is a provider-agnostic single-turn request.
type CompletionRequest struct {
	// System is the system instruction. Optional.
	System string

	// Prompt is the user message.
	Prompt string

	// Temperature controls sampling randomness (0.0-2.0).
	Temperature float64

	// MaxTokens caps the completion length. 0 uses the provider default.
	MaxTokens int
}

// TokenUsage represents token consumption for a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionResponse is a normalized provider response.
type CompletionResponse struct {
	// ID is the provider's response identifier.
	ID string

	// Model is the model that produced the response.
	Model string

	// Content is the concatenated text output.
	Content string

	// FinishReason indicates why generation stopped.
	FinishReason string

	// Usage contains token consumption.
	Usage TokenUsage
}

// ProviderHealth represents the health status of a provider, derived from
// the outcome of real calls.
type ProviderHealth struct {
	// IsHealthy is false after ConsecutiveFailures reaches the threshold.
	IsHealthy bool

	// LastCheck is when the last call completed.
	LastCheck time.Time

	// LastError is the error from the most recent failed call.
	LastError error

	// ConsecutiveFailures counts failed calls since the last success.
	ConsecutiveFailures int

	// LastSuccessfulRequest is when the last call succeeded.
	LastSuccessfulRequest time.Time

	// TotalRequests is the total number of calls made.
	TotalRequests int64

	// FailedRequests is the total number of failed calls.
	FailedRequests int64
}

// ProviderConfig contains the configuration for a provider instance.
type ProviderConfig struct {
	// Name is the unique identifier for this provider instance.
	Name string

	// Type is "openai" or "anthropic".
	Type string

	// BaseURL overrides the SDK's default API endpoint. Used for proxies,
	// compatible servers, and tests.
	BaseURL string

	// APIKey is the authentication key.
	APIKey string

	// Model is the model requests are sent to.
	Model string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// Provider types.
const (
	TypeOpenAI    = "openai"
	TypeAnthropic = "anthropic"
)

// Finish reasons normalized across providers.
const (
	FinishReasonStop   = "stop"
	FinishReasonLength = "length"
)
