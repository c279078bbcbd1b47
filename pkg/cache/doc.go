// Package cache remembers analysis results by a fingerprint of the input
// text.
//
// The key is content-derived, not account-derived: identical text submitted
// by two accounts shares one entry, because the analysis depends on the text
// alone. Only genuine analyses are cached; a fallback payload produced
// during an analyzer outage is refused so the outage is not replayed for
// the whole TTL.
//
// # Backends
//
//   - MemoryCache: bounded LRU (github.com/hashicorp/golang-lru/v2) with
//     per-entry expiry checked on read
//   - RedisCache: JSON values with a key TTL, shared across instances
//
// # Usage
//
//	fp := cache.Fingerprint(text)
//	if payload, ok := c.Get(ctx, fp); ok {
//	    return payload
//	}
//	payload := analyze(text)
//	_ = c.Set(ctx, fp, payload)
package cache
