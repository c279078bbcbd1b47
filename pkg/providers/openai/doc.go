// Package openai implements providers.Provider with the official OpenAI Go
// SDK (github.com/openai/openai-go) against the Chat Completions API.
//
// # Usage
//
//	provider, err := openai.NewProvider(providers.ProviderConfig{
//	    Name:   "openai",
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-3.5-turbo",
//	})
//
// BaseURL may point at any Chat Completions compatible endpoint; it must
// include the version path (e.g. "http://localhost:8080/v1/").
package openai
