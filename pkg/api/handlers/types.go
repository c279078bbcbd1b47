package handlers

import (
	"context"
	"io"

	"mercator-hq/feedback/pkg/analysis"
	"mercator-hq/feedback/pkg/analytics"
	"mercator-hq/feedback/pkg/storage"
)

// Analyzer runs one analysis for an admitted account.
// *analysis.Service implements it.
type Analyzer interface {
	Analyze(ctx context.Context, account *storage.Account, text string) (*analysis.Outcome, error)
}

// AnalyticsReader serves an account's history.
// *analytics.Service implements it.
type AnalyticsReader interface {
	ForAccount(ctx context.Context, account *storage.Account) (*analytics.Report, error)
	Export(ctx context.Context, account *storage.Account, exporter analytics.Exporter, w io.Writer) error
}

// AccountService registers and logs in accounts.
// *auth.Accounts implements it.
type AccountService interface {
	Register(ctx context.Context, email, password string) (*storage.Account, error)
	Login(ctx context.Context, email, password string) (*storage.Account, error)
}
