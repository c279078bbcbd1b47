package analytics

import (
	"context"
	"fmt"
	"io"

	"mercator-hq/feedback/pkg/storage"
)

// RecordLister loads an account's analysis history. storage.Store
// implements it.
type RecordLister interface {
	ListAnalyses(ctx context.Context, accountID string) ([]storage.AnalysisRecord, error)
}

// Report is the analytics view of one account.
type Report struct {
	Summary
	RequestsUsed  int `json:"requests_used"`
	RequestsLimit int `json:"requests_limit"`
}

// Service serves analytics reads.
type Service struct {
	store RecordLister
}

// NewService creates an analytics service over store.
func NewService(store RecordLister) *Service {
	return &Service{store: store}
}

// ForAccount summarizes the account's history and attaches its usage.
func (s *Service) ForAccount(ctx context.Context, account *storage.Account) (*Report, error) {
	records, err := s.store.ListAnalyses(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	return &Report{
		Summary:       Summarize(records),
		RequestsUsed:  account.RequestsUsed,
		RequestsLimit: account.RequestsLimit,
	}, nil
}

// Export writes the account's full history to w using exporter.
func (s *Service) Export(ctx context.Context, account *storage.Account, exporter Exporter, w io.Writer) error {
	records, err := s.store.ListAnalyses(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("list analyses: %w", err)
	}
	return exporter.Export(ctx, records, w)
}
