package secrets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"mercator-hq/feedback/pkg/config"
)

// secretRefRegex matches ${secret:name} references.
var secretRefRegex = regexp.MustCompile(`\$\{secret:([^}]+)\}`)

const maxCachedSecrets = 256

// Resolver looks secrets up in its providers in order and caches the
// values it finds.
type Resolver struct {
	providers []Provider
	cache     *expirable.LRU[string, string]
	closers   []func() error
}

// NewResolver creates a resolver over providers, caching values for ttl.
func NewResolver(ttl time.Duration, providers ...Provider) *Resolver {
	return &Resolver{
		providers: providers,
		cache:     expirable.NewLRU[string, string](maxCachedSecrets, nil, ttl),
	}
}

// FromConfig builds the file (when dir is set) and environment providers.
func FromConfig(cfg config.SecretsConfig) (*Resolver, error) {
	r := NewResolver(cfg.CacheTTL)

	if cfg.Dir != "" {
		fp, err := NewFileProvider(cfg.Dir, cfg.Watch, r.Purge)
		if err != nil {
			return nil, err
		}
		r.providers = append(r.providers, fp)
		r.closers = append(r.closers, fp.Close)
	}
	r.providers = append(r.providers, NewEnvProvider(cfg.EnvPrefix))

	return r, nil
}

// GetSecret returns the value from the first provider that has name.
func (r *Resolver) GetSecret(ctx context.Context, name string) (string, error) {
	if value, ok := r.cache.Get(name); ok {
		return value, nil
	}

	var errs []error
	for _, p := range r.providers {
		value, err := p.GetSecret(ctx, name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				slog.Warn("secret provider failed",
					"provider", p.Name(),
					"name", redactSecretName(name),
					"error", err,
				)
			}
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		r.cache.Add(name, value)
		slog.Debug("secret resolved", "provider", p.Name(), "name", redactSecretName(name))
		return value, nil
	}

	return "", fmt.Errorf("secret %q: %w", name, errors.Join(errs...))
}

// Resolve replaces every ${secret:name} reference in input. Unresolved
// references are left in place and reported in the error.
func (r *Resolver) Resolve(ctx context.Context, input string) (string, error) {
	var errs []error

	output := secretRefRegex.ReplaceAllStringFunc(input, func(match string) string {
		name := strings.TrimSpace(secretRefRegex.FindStringSubmatch(match)[1])
		value, err := r.GetSecret(ctx, name)
		if err != nil {
			errs = append(errs, err)
			return match
		}
		return value
	})

	if len(errs) > 0 {
		return output, fmt.Errorf("failed to resolve secret references: %w", errors.Join(errs...))
	}
	return output, nil
}

// ResolveProviderKeys resolves references in every provider's API key.
func (r *Resolver) ResolveProviderKeys(ctx context.Context, cfg *config.Config) error {
	var errs []error
	for name, pc := range cfg.Providers {
		if !HasReference(pc.APIKey) {
			continue
		}
		resolved, err := r.Resolve(ctx, pc.APIKey)
		if err != nil {
			errs = append(errs, fmt.Errorf("providers.%s.api_key: %w", name, err))
			continue
		}
		pc.APIKey = resolved
		cfg.Providers[name] = pc
	}
	return errors.Join(errs...)
}

// Purge drops every cached value.
func (r *Resolver) Purge() {
	r.cache.Purge()
}

// Close releases provider resources such as directory watchers.
func (r *Resolver) Close() error {
	var errs []error
	for _, closeFn := range r.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// HasReference reports whether s contains a ${secret:name} reference.
func HasReference(s string) bool {
	return secretRefRegex.MatchString(s)
}

func redactSecretName(name string) string {
	if len(name) <= 4 {
		return "***"
	}
	return name[:2] + "..." + name[len(name)-2:]
}
