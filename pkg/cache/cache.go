package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"time"
)

// DefaultTTL is how long a cached analysis stays valid.
const DefaultTTL = time.Hour

// ErrUncacheable is returned by Set for fallback payloads.
var ErrUncacheable = errors.New("fallback payloads are not cacheable")

// Payload is the analysis result shared by every request with the same text.
type Payload struct {
	Sentiment   string   `json:"sentiment"`
	Score       int      `json:"score"`
	Suggestions []string `json:"suggestions"`
	Summary     string   `json:"summary"`

	// Fallback marks the fixed default substituted for a failed analysis.
	// It is never serialized, so a payload read back from a cache is
	// always genuine.
	Fallback bool `json:"-"`
}

// Clone returns a deep copy so callers never share the suggestions slice.
func (p Payload) Clone() Payload {
	p.Suggestions = slices.Clone(p.Suggestions)
	if p.Suggestions == nil {
		p.Suggestions = []string{}
	}
	return p
}

// Cache stores payloads by fingerprint.
//
// Get reports a miss for absent and expired entries alike. Backend failures
// are logged and reported as misses, since the cache is an optimization.
// Set replaces the entry wholesale and refuses fallback payloads with
// ErrUncacheable.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (Payload, bool)
	Set(ctx context.Context, fingerprint string, payload Payload) error
}

// Fingerprint returns the cache key for text: the hex SHA-256 of its exact
// bytes. Texts differing only in whitespace or case get different keys.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
