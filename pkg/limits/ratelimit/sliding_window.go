package ratelimit

import (
	"slices"
	"sync"
	"time"

	"mercator-hq/feedback/pkg/limits"
)

// window is a sliding window log for one identity.
//
// It keeps the timestamp of every admitted request in the trailing window,
// oldest first. Timestamps at or before now-span are pruned on every check,
// so a request exactly span old no longer counts. Unlike fixed buckets,
// bursts straddling a bucket boundary cannot double the effective rate.
//
// Memory per identity is bounded by the limit: rejected attempts are never
// recorded.
type window struct {
	mu       sync.Mutex
	stamps   []time.Time
	lastSeen time.Time

	// dead is set by the reaper once the window is removed from the map.
	// A caller that loses that race must fetch a fresh window.
	dead bool
}

// allowLocked prunes expired timestamps, then admits and records now if fewer
// than limit remain. Caller must hold w.mu.
func (w *window) allowLocked(now time.Time, limit int, span time.Duration) Decision {
	if now.After(w.lastSeen) {
		w.lastSeen = now
	}
	w.pruneLocked(now.Add(-span))

	if len(w.stamps) >= limit {
		reset := w.stamps[0].Add(span)
		return Decision{
			Allowed: false,
			Info: limits.RateLimitInfo{
				Limit:     limit,
				Remaining: 0,
				Reset:     reset,
				Window:    span,
			},
			RetryAfter: reset.Sub(now),
		}
	}

	// Keep stamps sorted even when a caller passes times out of order;
	// pruneLocked stops at the first unexpired stamp.
	i, _ := slices.BinarySearchFunc(w.stamps, now, func(a, b time.Time) int {
		if a.After(b) {
			return 1
		}
		return -1
	})
	w.stamps = slices.Insert(w.stamps, i, now)

	return Decision{
		Allowed: true,
		Info: limits.RateLimitInfo{
			Limit:     limit,
			Remaining: limit - len(w.stamps),
			Reset:     w.stamps[0].Add(span),
			Window:    span,
		},
	}
}

// pruneLocked drops timestamps at or before cutoff. Caller must hold w.mu.
func (w *window) pruneLocked(cutoff time.Time) {
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return
	}

	// Compact in place so the backing array never grows past the limit.
	n := copy(w.stamps, w.stamps[i:])
	w.stamps = w.stamps[:n]
}

// idleLocked reports whether no request has been seen for at least idle.
// Caller must hold w.mu.
func (w *window) idleLocked(now time.Time, idle time.Duration) bool {
	return now.Sub(w.lastSeen) >= idle
}
