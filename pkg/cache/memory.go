package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"mercator-hq/feedback/pkg/telemetry/metrics"
)

// DefaultMaxEntries bounds the in-memory cache.
const DefaultMaxEntries = 10000

const memoryCacheName = "result"

type entry struct {
	payload   Payload
	expiresAt time.Time
}

// MemoryCache is a bounded LRU cache with per-entry expiry.
//
// An entry is valid while now < expiresAt; at expiresAt it is a miss and is
// removed. Entries are otherwise evicted only when the cache is full, least
// recently used first.
type MemoryCache struct {
	// mu makes the check-expiry-then-remove sequence in Get atomic with
	// respect to a concurrent Set of the same key.
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	ttl     time.Duration

	now     func() time.Time
	metrics *metrics.Collector
}

// NewMemoryCache creates a cache holding at most maxEntries payloads for ttl
// each. Zero values take the defaults. collector may be nil.
func NewMemoryCache(ttl time.Duration, maxEntries int, collector *metrics.Collector) (*MemoryCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	entries, err := lru.New[string, entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	return &MemoryCache{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
		metrics: collector,
	}, nil
}

// Get returns the payload stored under fingerprint if it has not expired.
func (c *MemoryCache) Get(ctx context.Context, fingerprint string) (Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(fingerprint)
	if !ok {
		c.metrics.RecordCacheMiss(memoryCacheName)
		return Payload{}, false
	}

	if !c.now().Before(e.expiresAt) {
		c.entries.Remove(fingerprint)
		c.metrics.RecordCacheEviction(memoryCacheName, "expired")
		c.metrics.RecordCacheMiss(memoryCacheName)
		c.metrics.UpdateCacheSize(memoryCacheName, c.entries.Len())
		return Payload{}, false
	}

	c.metrics.RecordCacheHit(memoryCacheName)
	return e.payload.Clone(), true
}

// Set stores payload under fingerprint with expiry now + ttl.
func (c *MemoryCache) Set(ctx context.Context, fingerprint string, payload Payload) error {
	if payload.Fallback {
		return ErrUncacheable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if evicted := c.entries.Add(fingerprint, entry{
		payload:   payload.Clone(),
		expiresAt: c.now().Add(c.ttl),
	}); evicted {
		c.metrics.RecordCacheEviction(memoryCacheName, "capacity")
	}
	c.metrics.UpdateCacheSize(memoryCacheName, c.entries.Len())

	return nil
}

// Len returns the number of entries, expired or not.
func (c *MemoryCache) Len() int {
	return c.entries.Len()
}

// Purge removes every entry.
func (c *MemoryCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Purge()
	c.metrics.UpdateCacheSize(memoryCacheName, 0)
}
