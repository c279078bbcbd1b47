package enforcement

import (
	"context"

	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/limits/ratelimit"
	"mercator-hq/feedback/pkg/storage"
)

// Admitter resolves a credential to an account with quota left.
type Admitter interface {
	Admit(ctx context.Context, credential string) (*storage.Account, error)
}

// Result contains the outcome of an admitted request.
type Result struct {
	// Account is the resolved caller.
	Account *storage.Account

	// RateLimit is the caller's window after this request was recorded.
	RateLimit limits.RateLimitInfo
}

// Enforcer runs the admission checks for an authenticated request, in order:
// quota gate, then rate limiter keyed by account ID. A request rejected by
// the gate is never recorded in the rate window.
type Enforcer struct {
	gate    Admitter
	limiter ratelimit.Checker
}

// NewEnforcer creates an enforcer. limiter may be nil to disable rate limiting.
//
// Example:
//
//	enforcer := enforcement.NewEnforcer(
//	    quota.NewGate(store, collector),
//	    ratelimit.NewLimiter(ratelimit.Config{}, collector),
//	)
func NewEnforcer(gate Admitter, limiter ratelimit.Checker) *Enforcer {
	return &Enforcer{gate: gate, limiter: limiter}
}

// Enforce admits or rejects a request carrying credential.
//
// On a rate limit rejection the returned Result is non-nil so the caller
// can still emit X-RateLimit-* headers. Errors are those of quota.Gate.Admit
// and ratelimit.Checker.Check.
func (e *Enforcer) Enforce(ctx context.Context, credential string) (*Result, error) {
	account, err := e.gate.Admit(ctx, credential)
	if err != nil {
		return nil, err
	}

	result := &Result{Account: account}
	if e.limiter == nil {
		return result, nil
	}

	decision, err := e.limiter.Check(ctx, account.ID)
	result.RateLimit = decision.Info
	if err != nil {
		return result, err
	}
	return result, nil
}
