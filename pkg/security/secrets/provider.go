package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a provider has no value for a secret.
var ErrNotFound = errors.New("secret not found")

// Provider looks up secret values by name.
type Provider interface {
	// GetSecret returns the value of name, or an error wrapping ErrNotFound.
	GetSecret(ctx context.Context, name string) (string, error)

	// Name identifies the provider in logs ("env", "file").
	Name() string
}
