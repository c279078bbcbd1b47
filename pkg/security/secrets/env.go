package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// EnvProvider reads secrets from environment variables. The secret
// "openai-api-key" with prefix "FEEDBACK_SECRET_" is read from
// FEEDBACK_SECRET_OPENAI_API_KEY.
type EnvProvider struct {
	Prefix string
}

// NewEnvProvider creates an environment provider with the given prefix.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{Prefix: prefix}
}

// GetSecret implements Provider.
func (p *EnvProvider) GetSecret(ctx context.Context, name string) (string, error) {
	envVar := p.envVar(name)

	value := os.Getenv(envVar)
	if value == "" {
		return "", fmt.Errorf("%w in environment (%s)", ErrNotFound, envVar)
	}
	return value, nil
}

// Name implements Provider.
func (p *EnvProvider) Name() string {
	return "env"
}

func (p *EnvProvider) envVar(name string) string {
	return p.Prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
