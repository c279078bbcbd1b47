// Package enforcement composes the quota gate and the rate limiter into a
// single admission step for authenticated HTTP requests.
//
// # Usage
//
//	result, err := enforcer.Enforce(ctx, apiKey)
//	switch {
//	case errors.Is(err, limits.ErrUnauthenticated):
//	    // 401
//	case errors.Is(err, limits.ErrQuotaExceeded), errors.Is(err, limits.ErrRateLimited):
//	    // 429
//	}
//	account := result.Account
package enforcement
