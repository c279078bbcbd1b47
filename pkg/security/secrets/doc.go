/*
Package secrets resolves ${secret:name} references in configuration values.

Provider API keys may be written as references instead of literals:

	providers:
	  openai:
	    api_key: ${secret:openai-api-key}
	secrets:
	  dir: /run/secrets
	  watch: true

A reference is looked up in the secrets directory first, where each secret
is a file named after it (mode 0600 or 0400), then in the environment under
FEEDBACK_SECRET_<NAME> with hyphens turned into underscores.

	resolver, err := secrets.FromConfig(cfg.Secrets)
	if err != nil {
		return err
	}
	defer resolver.Close()

	if err := resolver.ResolveProviderKeys(ctx, cfg); err != nil {
		return err
	}

Resolved values are cached for secrets.cache_ttl. With watch enabled,
changes in the directory drop the cache so rotated keys are read again.
Secret names are redacted in log output.
*/
package secrets
