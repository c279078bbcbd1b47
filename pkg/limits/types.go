package limits

import (
	"errors"
	"fmt"
	"time"
)

// Error types for admission failures.
var (
	// ErrUnauthenticated is returned when the credential is missing or unknown.
	ErrUnauthenticated = errors.New("invalid or missing API key")

	// ErrQuotaExceeded is returned when an account has used its lifetime quota.
	ErrQuotaExceeded = errors.New("request quota exceeded")

	// ErrRateLimited is returned when an identity exceeds the request rate.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrStorageFailure is returned when the backing store cannot be reached.
	ErrStorageFailure = errors.New("limits storage failure")
)

// Limit types carried by LimitError.
const (
	TypeRateLimit = "rate_limit"
	TypeQuota     = "quota"
)

// RateLimitInfo contains the limiter state for one identity.
// It is used to populate the X-RateLimit-* response headers.
type RateLimitInfo struct {
	// Limit is the maximum admitted requests per window.
	Limit int

	// Remaining is how many more requests the window admits right now.
	Remaining int

	// Reset is when the oldest request in the window stops counting.
	Reset time.Time

	// Window is the trailing window length.
	Window time.Duration
}

// LimitError provides detail about a limit violation. It unwraps to
// ErrRateLimited or ErrQuotaExceeded so callers can use errors.Is.
type LimitError struct {
	// Type is TypeRateLimit or TypeQuota.
	Type string

	// Identifier is the identity the limit applies to.
	Identifier string

	// Limit is the configured ceiling.
	Limit int

	// Current is the count observed when the request was rejected.
	Current int

	// RetryAfter is how long until a retry can succeed. Zero for quotas,
	// which never reset on their own.
	RetryAfter time.Duration

	// Err is the underlying sentinel.
	Err error
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded for %s: current=%d, limit=%d",
		e.Type, e.Identifier, e.Current, e.Limit)
}

// Unwrap returns the underlying error for error wrapping.
func (e *LimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError builds the error returned for a rejected rate check.
func NewRateLimitError(identifier string, info RateLimitInfo, retryAfter time.Duration) *LimitError {
	return &LimitError{
		Type:       TypeRateLimit,
		Identifier: identifier,
		Limit:      info.Limit,
		Current:    info.Limit - info.Remaining,
		RetryAfter: retryAfter,
		Err:        ErrRateLimited,
	}
}

// NewQuotaError builds the error returned when an account's quota is spent.
func NewQuotaError(identifier string, used, limit int) *LimitError {
	return &LimitError{
		Type:       TypeQuota,
		Identifier: identifier,
		Limit:      limit,
		Current:    used,
		Err:        ErrQuotaExceeded,
	}
}
