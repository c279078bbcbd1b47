package ratelimit

import (
	"context"
	"time"

	"mercator-hq/feedback/pkg/limits"
)

// Default limiter settings: 30 admitted requests per trailing 60 seconds.
const (
	DefaultLimit        = 30
	DefaultWindow       = 60 * time.Second
	DefaultIdleTimeout  = 10 * time.Minute
	DefaultReapInterval = time.Minute
)

// Config contains configuration for a limiter.
type Config struct {
	// Limit is the maximum number of admitted requests per window.
	Limit int

	// Window is the trailing window length.
	Window time.Duration

	// IdleTimeout is how long an identity may go without requests before
	// its window is reclaimed by the reaper. Must be at least Window.
	IdleTimeout time.Duration

	// ReapInterval is how often the reaper sweeps idle identities.
	ReapInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	if c.IdleTimeout < c.Window {
		c.IdleTimeout = DefaultIdleTimeout
		if c.IdleTimeout < c.Window {
			c.IdleTimeout = c.Window
		}
	}
	if c.ReapInterval <= 0 {
		c.ReapInterval = DefaultReapInterval
	}
	return c
}

// Decision is the result of one rate check.
type Decision struct {
	// Allowed indicates if the request was admitted and recorded.
	Allowed bool

	// Info describes the window after the decision.
	Info limits.RateLimitInfo

	// RetryAfter is how long until a rejected request could be admitted.
	// Zero when Allowed.
	RetryAfter time.Duration
}

// Checker is implemented by every limiter backend.
//
// Check records the request and returns a nil error when it is admitted.
// When the ceiling is reached the request is not recorded and the error is
// a *limits.LimitError wrapping limits.ErrRateLimited. Other errors mean the
// backend itself failed.
type Checker interface {
	Check(ctx context.Context, identity string) (Decision, error)
}
