package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3" // cgo SQLite driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure Go SQLite driver, registered as "sqlite"
)

// Dialect identifies the SQL flavor spoken by a database/sql driver.
type Dialect string

const (
	// DialectSQLite covers both SQLite drivers.
	DialectSQLite Dialect = "sqlite"

	// DialectPostgres is PostgreSQL through lib/pq.
	DialectPostgres Dialect = "postgres"
)

// SQLConfig contains configuration for the SQL store.
type SQLConfig struct {
	// Driver is the database/sql driver name: "sqlite", "sqlite3" or "postgres".
	Driver string

	// DSN is the driver-specific data source name.
	DSN string

	// MaxOpenConns is the maximum number of open connections.
	// SQLite is always limited to a single connection.
	MaxOpenConns int

	// BusyTimeout is how long SQLite waits for locks before failing.
	BusyTimeout time.Duration
}

// SQLStore implements Store on top of database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	driver  string
	logger  *slog.Logger
}

// NewSQLStore opens the database, applies the schema, and returns a ready store.
func NewSQLStore(ctx context.Context, cfg SQLConfig) (*SQLStore, error) {
	dialect, dsn, err := prepareDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	if dialect == DialectSQLite {
		// SQLite only supports a single writer; a single connection also keeps
		// ":memory:" databases shared across calls.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns / 2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	s := &SQLStore{
		db:      db,
		dialect: dialect,
		driver:  cfg.Driver,
		logger:  slog.Default().With("component", "storage."+cfg.Driver),
	}

	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("SQL storage initialized",
		"driver", cfg.Driver,
		"schema_version", SchemaVersion,
	)

	return s, nil
}

// prepareDSN resolves the dialect of a driver and decorates SQLite DSNs with
// the pragmas the store relies on.
func prepareDSN(cfg SQLConfig) (Dialect, string, error) {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}

	switch cfg.Driver {
	case "sqlite":
		return DialectSQLite, appendQuery(cfg.DSN, fmt.Sprintf(
			"_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
			busy.Milliseconds())), nil
	case "sqlite3":
		return DialectSQLite, appendQuery(cfg.DSN, fmt.Sprintf(
			"_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on",
			busy.Milliseconds())), nil
	case "postgres":
		return DialectPostgres, cfg.DSN, nil
	default:
		return "", "", fmt.Errorf("unsupported SQL driver %q", cfg.Driver)
	}
}

func appendQuery(dsn, query string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + query
	}
	return dsn + "?" + query
}

// initialize creates the schema and verifies its version.
func (s *SQLStore) initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.rebind(InsertSchemaVersion), SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, GetSchemaVersion).Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	return nil
}

// rebind rewrites '?' placeholders into the dialect's positional form.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CreateAccount inserts a new account.
func (s *SQLStore) CreateAccount(ctx context.Context, account *Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO users (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		account.ID,
		account.Email,
		account.PasswordHash,
		account.APIKey,
		account.Plan,
		account.RequestsUsed,
		account.RequestsLimit,
		account.CreatedAt.UnixNano(),
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// duplicateError maps unique constraint violations to sentinel errors.
func duplicateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		if strings.Contains(pqErr.Constraint, "email") {
			return ErrDuplicateEmail
		}
		return ErrDuplicateAPIKey
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		if strings.Contains(msg, "users.email") {
			return ErrDuplicateEmail
		}
		return ErrDuplicateAPIKey
	}

	return nil
}

// GetAccount returns the account with the given ID.
func (s *SQLStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	return s.queryAccount(ctx, `SELECT `+accountColumns+` FROM users WHERE id = ?`, id)
}

// GetAccountByAPIKey resolves a credential to its account.
func (s *SQLStore) GetAccountByAPIKey(ctx context.Context, apiKey string) (*Account, error) {
	return s.queryAccount(ctx, `SELECT `+accountColumns+` FROM users WHERE api_key = ?`, apiKey)
}

// GetAccountByEmail returns the account registered with email.
func (s *SQLStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	return s.queryAccount(ctx, `SELECT `+accountColumns+` FROM users WHERE email = ?`, email)
}

func (s *SQLStore) queryAccount(ctx context.Context, query string, arg any) (*Account, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(query), arg)

	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	return account, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*Account, error) {
	var (
		a         Account
		createdAt int64
	)
	err := row.Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.APIKey,
		&a.Plan,
		&a.RequestsUsed,
		&a.RequestsLimit,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	return &a, nil
}

// ListAccounts returns all accounts ordered by creation time.
func (s *SQLStore) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	return accounts, rows.Err()
}

// SaveAnalysis inserts the record and increments usage in one transaction.
func (s *SQLStore) SaveAnalysis(ctx context.Context, record *AnalysisRecord) (int, error) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	suggestions := record.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	encoded, err := json.Marshal(suggestions)
	if err != nil {
		return 0, fmt.Errorf("failed to encode suggestions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.rebind(`UPDATE users SET requests_used = requests_used + 1
		WHERE id = ? AND requests_used < requests_limit`), record.AccountID)
	if err != nil {
		return 0, fmt.Errorf("failed to increment usage: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	var used int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT requests_used FROM users WHERE id = ?`), record.AccountID).Scan(&used)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage: %w", err)
	}
	if affected == 0 {
		return 0, ErrQuotaExhausted
	}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO analyses (`+analysisColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		record.ID,
		record.AccountID,
		record.Text,
		record.Sentiment,
		record.Score,
		string(encoded),
		record.Summary,
		record.Cached,
		record.Fallback,
		record.CreatedAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit analysis: %w", err)
	}

	return used, nil
}

// ListAnalyses returns all records of an account, oldest first.
func (s *SQLStore) ListAnalyses(ctx context.Context, accountID string) ([]AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+analysisColumns+`
		FROM analyses WHERE user_id = ? ORDER BY created_at, id`), accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var (
			r           AnalysisRecord
			suggestions string
			createdAt   int64
		)
		err := rows.Scan(
			&r.ID,
			&r.AccountID,
			&r.Text,
			&r.Sentiment,
			&r.Score,
			&suggestions,
			&r.Summary,
			&r.Cached,
			&r.Fallback,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		if err := json.Unmarshal([]byte(suggestions), &r.Suggestions); err != nil {
			s.logger.Warn("unreadable suggestions column", "analysis_id", r.ID, "error", err)
			r.Suggestions = []string{}
		}
		r.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, r)
	}

	return records, rows.Err()
}

// DeleteAnalysesBefore removes records created before cutoff.
func (s *SQLStore) DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM analyses WHERE created_at < ?`), cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to delete analyses: %w", err)
	}
	return res.RowsAffected()
}

// Ping verifies the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Driver returns the database/sql driver name in use.
func (s *SQLStore) Driver() string {
	return s.driver
}
