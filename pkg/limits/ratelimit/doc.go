// Package ratelimit provides a sliding window request limiter.
//
// # Algorithm
//
// For each identity the limiter keeps the timestamps of admitted requests
// in the trailing window. On every check:
//
//  1. Drop timestamps at or before now - window
//  2. If the remaining count has reached the limit, reject without recording
//  3. Otherwise record now and admit
//
// With the default 30 requests per 60 seconds, the 31st request inside any
// 60 second span is rejected, while requests spaced 2 seconds apart are
// admitted indefinitely.
//
// # Backends
//
//   - Limiter: in-memory, one mutex per identity, idle windows reclaimed by
//     StartReaper
//   - RedisLimiter: sorted set per identity updated by an atomic Lua script,
//     shared across instances
//
// Both implement Checker:
//
//	d, err := checker.Check(ctx, account.ID)
//	if errors.Is(err, limits.ErrRateLimited) {
//	    // 429 with Retry-After: d.RetryAfter
//	}
package ratelimit
