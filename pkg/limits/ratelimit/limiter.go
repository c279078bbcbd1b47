package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/telemetry/metrics"
)

// Limiter is the in-memory sliding window limiter.
//
// Each identity owns a window guarded by its own mutex; the map lock is held
// only to look up or insert a window. Two concurrent requests for the same
// identity are therefore serialized, and the second always observes the
// first one's timestamp.
//
// Windows of identities that stop sending requests are reclaimed by the
// reaper started with StartReaper.
type Limiter struct {
	config  Config
	windows map[string]*window
	mu      sync.Mutex

	now     func() time.Time
	metrics *metrics.Collector
	logger  *slog.Logger
}

// NewLimiter creates a new in-memory limiter. Zero config values take the
// package defaults. collector may be nil.
//
// Example:
//
//	limiter := ratelimit.NewLimiter(ratelimit.Config{Limit: 30, Window: time.Minute}, nil)
//	go limiter.StartReaper(ctx)
func NewLimiter(config Config, collector *metrics.Collector) *Limiter {
	return &Limiter{
		config:  config.withDefaults(),
		windows: make(map[string]*window),
		now:     time.Now,
		metrics: collector,
		logger:  slog.Default().With("component", "ratelimit"),
	}
}

// Allow decides whether identity may make a request at now, and records it
// if so. Rejected attempts are not recorded.
func (l *Limiter) Allow(identity string, now time.Time) Decision {
	return l.allow(identity, func() time.Time { return now })
}

// allow reads clock only after the identity's window is locked, so stamps
// are taken in the order requests are serialized.
func (l *Limiter) allow(identity string, clock func() time.Time) Decision {
	for {
		w := l.getWindow(identity)

		w.mu.Lock()
		if w.dead {
			// Reaped between lookup and lock; retry with a fresh window.
			w.mu.Unlock()
			continue
		}
		d := w.allowLocked(clock(), l.config.Limit, l.config.Window)
		w.mu.Unlock()

		l.metrics.RecordRateLimitCheck("memory", d.Allowed)
		return d
	}
}

// Check implements Checker using the limiter's clock.
func (l *Limiter) Check(ctx context.Context, identity string) (Decision, error) {
	d := l.allow(identity, l.now)
	if !d.Allowed {
		l.logger.DebugContext(ctx, "rate limit exceeded",
			"identity", identity,
			"retry_after", d.RetryAfter,
		)
		return d, limits.NewRateLimitError(identity, d.Info, d.RetryAfter)
	}
	return d, nil
}

func (l *Limiter) getWindow(identity string) *window {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[identity]
	if !ok {
		w = &window{}
		l.windows[identity] = w
	}
	return w
}

// Len returns the number of identities currently tracked.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.windows)
}

// Reap removes windows idle for at least the configured idle timeout and
// returns how many were removed.
func (l *Limiter) Reap(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for identity, w := range l.windows {
		w.mu.Lock()
		if w.idleLocked(now, l.config.IdleTimeout) {
			w.dead = true
			delete(l.windows, identity)
			removed++
		}
		w.mu.Unlock()
	}

	l.metrics.UpdateTrackedIdentities(len(l.windows))
	return removed
}

// StartReaper sweeps idle windows every ReapInterval until ctx is done.
// It blocks, so run it in its own goroutine.
func (l *Limiter) StartReaper(ctx context.Context) {
	ticker := time.NewTicker(l.config.ReapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Reap(l.now()); n > 0 {
				l.logger.Debug("reaped idle rate windows", "count", n)
			}
		}
	}
}
