package providers

import "context"

// Provider is the interface every LLM adapter implements. The analysis
// orchestrator uses it to send one prompt and read back plain text.
//
// Implementations must respect context cancellation and must not retry on
// their own: a failed call is absorbed into a fallback result upstream.
//
// Example usage:
//
//	resp, err := provider.SendCompletion(ctx, &providers.CompletionRequest{
//	    System:      "You are a feedback analysis assistant.",
//	    Prompt:      prompt,
//	    Temperature: 0.3,
//	    MaxTokens:   300,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(resp.Content)
type Provider interface {
	// SendCompletion sends one completion request and returns the normalized response.
	SendCompletion(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// GetName returns the provider's configured name (e.g., "openai").
	GetName() string

	// GetType returns the provider's type ("openai" or "anthropic").
	GetType() string

	// GetModel returns the model requests are sent to.
	GetModel() string

	// IsHealthy reports whether the most recent calls succeeded.
	IsHealthy() bool

	// GetHealth returns detailed health information.
	GetHealth() ProviderHealth

	// Close releases any resources held by the provider.
	Close() error
}
