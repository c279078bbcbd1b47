package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"mercator-hq/feedback/pkg/limits"
	"mercator-hq/feedback/pkg/limits/enforcement"
	"mercator-hq/feedback/pkg/storage"
)

func newAccounts(t *testing.T) (*Accounts, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	return NewAccounts(store, Config{BcryptCost: bcrypt.MinCost}), store
}

func TestGenerateAPIKey(t *testing.T) {
	pattern := regexp.MustCompile(`^sk_[0-9a-f]{40}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := GenerateAPIKey()
		require.Regexp(t, pattern, key)
		require.False(t, seen[key], "duplicate key generated")
		seen[key] = true
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "sk_0123...cdef", MaskAPIKey("sk_0123456789abcdef0123456789abcdef0123cdef"))
	assert.Equal(t, "***", MaskAPIKey("short"))
}

func TestAccounts_Register(t *testing.T) {
	accounts, store := newAccounts(t)
	ctx := context.Background()

	account, err := accounts.Register(ctx, "  Ann@Example.com ", "hunter22")
	require.NoError(t, err)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "ann@example.com", account.Email)
	assert.Equal(t, "free", account.Plan)
	assert.Equal(t, 100, account.RequestsLimit)
	assert.Equal(t, 0, account.RequestsUsed)
	assert.Regexp(t, `^sk_[0-9a-f]{40}$`, account.APIKey)
	assert.NotEqual(t, "hunter22", account.PasswordHash)

	stored, err := store.GetAccountByAPIKey(ctx, account.APIKey)
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)

	_, err = accounts.Register(ctx, "ann@example.com", "another1")
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)
}

func TestAccounts_RegisterValidation(t *testing.T) {
	accounts, _ := newAccounts(t)
	ctx := context.Background()

	for _, email := range []string{"", "not-an-email", "a@localhost", "Ann <ann@example.com>"} {
		_, err := accounts.Register(ctx, email, "hunter22")
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
	}

	_, err := accounts.Register(ctx, "bob@example.com", "12345")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestAccounts_Login(t *testing.T) {
	accounts, _ := newAccounts(t)
	ctx := context.Background()

	registered, err := accounts.Register(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)

	account, err := accounts.Login(ctx, "ANN@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, account.ID)
	assert.Equal(t, registered.APIKey, account.APIKey)

	_, err = accounts.Login(ctx, "ann@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = accounts.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccounts_CreateWithoutPassword(t *testing.T) {
	accounts, _ := newAccounts(t)
	ctx := context.Background()

	account, err := accounts.CreateWithoutPassword(ctx, "ops@example.com", "pro", 5000)
	require.NoError(t, err)
	assert.Equal(t, "pro", account.Plan)
	assert.Equal(t, 5000, account.RequestsLimit)

	_, err = accounts.Login(ctx, "ops@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// collidingStore fails the first CreateAccount with a duplicate key.
type collidingStore struct {
	*storage.MemoryStore
	failures int
}

func (s *collidingStore) CreateAccount(ctx context.Context, account *storage.Account) error {
	if s.failures > 0 {
		s.failures--
		return storage.ErrDuplicateAPIKey
	}
	return s.MemoryStore.CreateAccount(ctx, account)
}

func TestAccounts_RetriesKeyCollision(t *testing.T) {
	store := &collidingStore{MemoryStore: storage.NewMemoryStore(), failures: 2}
	accounts := NewAccounts(store, Config{BcryptCost: bcrypt.MinCost})

	_, err := accounts.Register(context.Background(), "ann@example.com", "hunter22")
	require.NoError(t, err)

	store.failures = 3
	_, err = accounts.Register(context.Background(), "bob@example.com", "hunter22")
	assert.ErrorIs(t, err, storage.ErrDuplicateAPIKey)
}

func TestExtractAPIKey(t *testing.T) {
	sources := DefaultSources("")

	tests := []struct {
		name   string
		header map[string]string
		want   string
	}{
		{name: "x-api-key", header: map[string]string{"X-API-Key": "sk_a"}, want: "sk_a"},
		{name: "bearer", header: map[string]string{"Authorization": "Bearer sk_b"}, want: "sk_b"},
		{name: "bearer lower case", header: map[string]string{"Authorization": "bearer sk_b"}, want: "sk_b"},
		{name: "x-api-key wins", header: map[string]string{"X-API-Key": "sk_a", "Authorization": "Bearer sk_b"}, want: "sk_a"},
		{name: "basic ignored", header: map[string]string{"Authorization": "Basic abc"}, want: ""},
		{name: "none", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.header {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ExtractAPIKey(r, sources))
		})
	}
}

type stubEnforcer struct {
	result *enforcement.Result
	err    error
	seen   string
}

func (s *stubEnforcer) Enforce(_ context.Context, credential string) (*enforcement.Result, error) {
	s.seen = credential
	return s.result, s.err
}

func serve(t *testing.T, enforcer Enforcer, header, value string) (*httptest.ResponseRecorder, *storage.Account, error) {
	t.Helper()

	var (
		gotAccount *storage.Account
		gotErr     error
	)
	mw := NewAPIKeyMiddleware(enforcer, DefaultSources(""), func(w http.ResponseWriter, r *http.Request, err error) {
		gotErr = err
		w.WriteHeader(http.StatusTeapot)
	})
	h := mw.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccount, _ = AccountFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	if header != "" {
		r.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec, gotAccount, gotErr
}

func TestAPIKeyMiddleware_Admitted(t *testing.T) {
	reset := time.Unix(1700000060, 0)
	enforcer := &stubEnforcer{result: &enforcement.Result{
		Account:   &storage.Account{ID: "acct-1"},
		RateLimit: limits.RateLimitInfo{Limit: 30, Remaining: 29, Reset: reset, Window: time.Minute},
	}}

	rec, account, err := serve(t, enforcer, "X-API-Key", "sk_live")
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, "acct-1", account.ID)
	assert.Equal(t, "sk_live", enforcer.seen)
	assert.Equal(t, "30", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "29", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1700000060", rec.Header().Get("X-RateLimit-Reset"))
	assert.Empty(t, rec.Header().Get("Retry-After"))
}

func TestAPIKeyMiddleware_Unauthenticated(t *testing.T) {
	enforcer := &stubEnforcer{err: limits.ErrUnauthenticated}

	rec, account, err := serve(t, enforcer, "", "")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, limits.ErrUnauthenticated)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "", enforcer.seen)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestAPIKeyMiddleware_RateLimited(t *testing.T) {
	info := limits.RateLimitInfo{Limit: 30, Remaining: 0, Reset: time.Unix(1700000060, 0), Window: time.Minute}
	enforcer := &stubEnforcer{
		result: &enforcement.Result{Account: &storage.Account{ID: "acct-1"}, RateLimit: info},
		err:    limits.NewRateLimitError("acct-1", info, 1500*time.Millisecond),
	}

	rec, account, err := serve(t, enforcer, "Authorization", "Bearer sk_live")
	assert.Nil(t, account)
	assert.True(t, errors.Is(err, limits.ErrRateLimited))
	assert.Equal(t, "sk_live", enforcer.seen)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestAccountFromContext_Missing(t *testing.T) {
	_, ok := AccountFromContext(context.Background())
	assert.False(t, ok)

	_, ok = AccountFromContext(WithAccount(context.Background(), nil))
	assert.False(t, ok)
}
