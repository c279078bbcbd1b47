package quota

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/storage"
	"mercator-hq/feedback/pkg/telemetry/metrics"
)

// AccountLookup is the slice of the store the gate needs.
type AccountLookup interface {
	GetAccountByAPIKey(ctx context.Context, apiKey string) (*storage.Account, error)
}

// Gate validates credentials and checks quotas.
type Gate struct {
	accounts AccountLookup
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewGate creates a quota gate. collector may be nil.
func NewGate(accounts AccountLookup, collector *metrics.Collector) *Gate {
	return &Gate{
		accounts: accounts,
		metrics:  collector,
		logger:   slog.Default().With("component", "quota"),
	}
}

// Admit resolves credential to its account and checks that the account has
// quota left.
//
// Errors:
//   - limits.ErrUnauthenticated: credential empty or unknown
//   - *limits.LimitError wrapping limits.ErrQuotaExceeded: requests_used >= requests_limit
//   - limits.ErrStorageFailure: the account store failed
func (g *Gate) Admit(ctx context.Context, credential string) (*storage.Account, error) {
	if credential == "" {
		g.metrics.RecordQuotaCheck("unauthenticated")
		return nil, limits.ErrUnauthenticated
	}

	account, err := g.accounts.GetAccountByAPIKey(ctx, credential)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			g.metrics.RecordQuotaCheck("unauthenticated")
			return nil, limits.ErrUnauthenticated
		}
		g.metrics.RecordQuotaCheck("error")
		g.logger.ErrorContext(ctx, "account lookup failed", "error", err)
		return nil, fmt.Errorf("%w: %v", limits.ErrStorageFailure, err)
	}

	if account.RequestsUsed >= account.RequestsLimit {
		g.metrics.RecordQuotaCheck("exceeded")
		g.logger.InfoContext(ctx, "quota exceeded",
			"account_id", account.ID,
			"requests_used", account.RequestsUsed,
			"requests_limit", account.RequestsLimit,
		)
		return account, limits.NewQuotaError(account.ID, account.RequestsUsed, account.RequestsLimit)
	}

	g.metrics.RecordQuotaCheck("admitted")
	return account, nil
}
