// Package config provides configuration management for the feedback analyzer.
//
// Configuration is loaded from an optional YAML file, overlaid with
// environment variables, completed with defaults and validated. Values are
// applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file, if it exists
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Environment Variables
//
// Service variables follow the naming convention FEEDBACK_SECTION_FIELD:
//
//   - FEEDBACK_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - FEEDBACK_PROVIDERS_OPENAI_MODEL overrides providers.openai.model
//   - FEEDBACK_CACHE_BACKEND overrides cache.backend
//
// The conventional variables DATABASE_URL, REDIS_URL, PORT, OPENAI_API_KEY
// and ANTHROPIC_API_KEY are also honored, so the server can be started with
// nothing but an OpenAI key in the environment.
//
// # Singleton and Reload
//
//	if err := config.Initialize("config.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// A Watcher reloads the file when it changes and runs the hooks registered
// with OnReload. Components that cannot change at runtime (listen address,
// storage) keep the values they were constructed with; the log level is
// the main consumer of reloads.
//
// # Example Configuration
//
//	server:
//	  listen_address: "0.0.0.0:8000"
//
//	providers:
//	  openai:
//	    api_key: "sk-..."
//	    model: "gpt-3.5-turbo"
//
//	analysis:
//	  provider: openai
//	  timeout: 30s
//
//	limits:
//	  rate_limit:
//	    requests: 30
//	    window: 60s
//
//	storage:
//	  url: "sqlite://./feedback.db"
package config
