// Package limits provides admission control for analysis requests.
//
// # Overview
//
// Every authenticated request passes two checks before any analysis work:
//
//   - Quota: a lifetime ceiling on completed analyses per account
//   - Rate limit: at most N admitted requests per identity in a trailing window
//
// # Architecture
//
// The package is organized into sub-packages:
//
//   - quota: Resolves a credential to an account and checks its quota
//   - ratelimit: Sliding window limiter (in-memory or Redis)
//   - enforcement: Runs both checks in order for the HTTP layer
//
// This package holds the shared error taxonomy. Both violations unwrap to a
// sentinel so the HTTP layer can tell them apart:
//
//	var le *limits.LimitError
//	if errors.As(err, &le) && errors.Is(err, limits.ErrRateLimited) {
//	    w.Header().Set("Retry-After", ...)
//	}
//
// # Thread Safety
//
// All checks are safe for concurrent use. The quota check is advisory: the
// store's guarded increment is what keeps usage at or below the limit.
package limits
