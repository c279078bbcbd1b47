// Package providers defines the abstraction over the external LLM that
// analyzes feedback text.
//
// # Architecture
//
//  1. Provider Interface - The contract every adapter implements
//  2. Provider Adapters - openai (github.com/openai/openai-go) and
//     anthropic (github.com/anthropics/anthropic-sdk-go)
//  3. Provider Factory and Manager - pkg/providerfactory builds adapters
//     from configuration
//
// Adapters are single-shot: SDK retries are disabled and callers bound each
// call with a context deadline. Errors are normalized into AuthError,
// RateLimitError, and ProviderError so they can be classified for metrics.
//
// # Health
//
// There is no background probing. HealthTracker derives health from real
// calls: three consecutive failures mark a provider unhealthy and the next
// success marks it healthy again.
package providers
