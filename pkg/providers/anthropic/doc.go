// Package anthropic implements providers.Provider with the official
// Anthropic Go SDK (github.com/anthropics/anthropic-sdk-go) against the
// Messages API.
//
// Text blocks of the reply are concatenated; other block types are ignored.
// Stop reasons are normalized: "end_turn" becomes "stop" and "max_tokens"
// becomes "length".
package anthropic
