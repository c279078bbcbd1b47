package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an account or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when an account with the same email exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateAPIKey is returned when a generated API key collides.
	ErrDuplicateAPIKey = errors.New("api key already exists")

	// ErrQuotaExhausted is returned by SaveAnalysis when the account has no
	// requests left at commit time. Nothing is written in that case.
	ErrQuotaExhausted = errors.New("account quota exhausted")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
)

// Account is an API consumer identified by its API key.
type Account struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	APIKey        string    `json:"api_key"`
	Plan          string    `json:"plan"`
	RequestsUsed  int       `json:"requests_used"`
	RequestsLimit int       `json:"requests_limit"`
	CreatedAt     time.Time `json:"created_at"`
}

// Remaining returns how many analyses the account may still run.
func (a *Account) Remaining() int {
	if a.RequestsUsed >= a.RequestsLimit {
		return 0
	}
	return a.RequestsLimit - a.RequestsUsed
}

// AnalysisRecord is the durable result of one analysis request.
// Records are immutable once saved.
type AnalysisRecord struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Text        string    `json:"text"`
	Sentiment   string    `json:"sentiment"`
	Score       int       `json:"score"`
	Suggestions []string  `json:"suggestions"`
	Summary     string    `json:"summary"`
	Cached      bool      `json:"cached"`
	Fallback    bool      `json:"fallback"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists accounts and analysis records.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// CreateAccount inserts a new account. It returns ErrDuplicateEmail or
	// ErrDuplicateAPIKey on uniqueness violations.
	CreateAccount(ctx context.Context, account *Account) error

	// GetAccount returns the account with the given ID.
	GetAccount(ctx context.Context, id string) (*Account, error)

	// GetAccountByAPIKey resolves a credential to its account.
	GetAccountByAPIKey(ctx context.Context, apiKey string) (*Account, error)

	// GetAccountByEmail returns the account registered with email.
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)

	// ListAccounts returns all accounts ordered by creation time.
	ListAccounts(ctx context.Context) ([]Account, error)

	// SaveAnalysis stores the record and increments the owning account's
	// requests_used in a single unit of work. The increment only happens
	// while requests_used < requests_limit; otherwise ErrQuotaExhausted is
	// returned and nothing is written. On success it returns the account's
	// new requests_used.
	SaveAnalysis(ctx context.Context, record *AnalysisRecord) (int, error)

	// ListAnalyses returns all records of an account, oldest first.
	ListAnalyses(ctx context.Context, accountID string) ([]AnalysisRecord, error)

	// DeleteAnalysesBefore removes records created before cutoff and returns
	// the number removed.
	DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
