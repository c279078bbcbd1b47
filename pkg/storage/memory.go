package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with in-process maps. All data is lost when
// the process exits; it is intended for tests and local experiments.
//
// MemoryStore is thread-safe and supports concurrent access using sync.RWMutex.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	byAPIKey map[string]string
	byEmail  map[string]string
	analyses map[string][]AnalysisRecord
	closed   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]*Account),
		byAPIKey: make(map[string]string),
		byEmail:  make(map[string]string),
		analyses: make(map[string][]AnalysisRecord),
	}
}

// CreateAccount inserts a new account.
func (m *MemoryStore) CreateAccount(ctx context.Context, account *Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, ok := m.byEmail[account.Email]; ok {
		return ErrDuplicateEmail
	}
	if _, ok := m.byAPIKey[account.APIKey]; ok {
		return ErrDuplicateAPIKey
	}
	if _, ok := m.accounts[account.ID]; ok {
		return fmt.Errorf("account %q already exists", account.ID)
	}

	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	stored := *account
	m.accounts[account.ID] = &stored
	m.byAPIKey[account.APIKey] = account.ID
	m.byEmail[account.Email] = account.ID

	return nil
}

// GetAccount returns a copy of the account with the given ID.
func (m *MemoryStore) GetAccount(ctx context.Context, id string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.getLocked(id)
}

// GetAccountByAPIKey resolves a credential to a copy of its account.
func (m *MemoryStore) GetAccountByAPIKey(ctx context.Context, apiKey string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byAPIKey[apiKey]
	if !ok {
		return nil, ErrNotFound
	}
	return m.getLocked(id)
}

// GetAccountByEmail returns a copy of the account registered with email.
func (m *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return m.getLocked(id)
}

// getLocked returns a copy of an account. Caller must hold the lock.
func (m *MemoryStore) getLocked(id string) (*Account, error) {
	if m.closed {
		return nil, ErrClosed
	}
	account, ok := m.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *account
	return &cp, nil
}

// ListAccounts returns all accounts ordered by creation time.
func (m *MemoryStore) ListAccounts(ctx context.Context) ([]Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	accounts := make([]Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		accounts = append(accounts, *account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts, nil
}

// SaveAnalysis stores the record and increments usage under one lock.
func (m *MemoryStore) SaveAnalysis(ctx context.Context, record *AnalysisRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	account, ok := m.accounts[record.AccountID]
	if !ok {
		return 0, ErrNotFound
	}
	if account.RequestsUsed >= account.RequestsLimit {
		return 0, ErrQuotaExhausted
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	stored := *record
	stored.Suggestions = append([]string(nil), record.Suggestions...)
	m.analyses[record.AccountID] = append(m.analyses[record.AccountID], stored)
	account.RequestsUsed++

	return account.RequestsUsed, nil
}

// ListAnalyses returns copies of all records of an account, oldest first.
func (m *MemoryStore) ListAnalyses(ctx context.Context, accountID string) ([]AnalysisRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}

	records := m.analyses[accountID]
	out := make([]AnalysisRecord, len(records))
	for i, r := range records {
		out[i] = r
		out[i].Suggestions = append([]string(nil), r.Suggestions...)
	}

	return out, nil
}

// DeleteAnalysesBefore removes records created before cutoff.
func (m *MemoryStore) DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	var deleted int64
	for accountID, records := range m.analyses {
		kept := records[:0]
		for _, r := range records {
			if r.CreatedAt.Before(cutoff) {
				deleted++
				continue
			}
			kept = append(kept, r)
		}
		m.analyses[accountID] = kept
	}

	return deleted, nil
}

// Ping reports whether the store is open.
func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// SetUsage overwrites an account's usage counter. It exists for tests and
// administrative tooling.
func (m *MemoryStore) SetUsage(id string, used int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.RequestsUsed = used
	return nil
}
