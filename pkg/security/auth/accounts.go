package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mercator-hq/feedback/pkg/storage"
)

// Account defaults.
const (
	DefaultPlan              = "free"
	DefaultRequestsLimit     = 100
	DefaultMinPasswordLength = 6
)

// maxKeyAttempts bounds retries when a generated API key collides.
const maxKeyAttempts = 3

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a
	// wrong password. The two cases are not distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidEmail is returned by Register for a malformed address.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrWeakPassword is returned by Register for a password that is too short.
	ErrWeakPassword = errors.New("password too short")
)

// AccountStore is the slice of the store account management needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, account *storage.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*storage.Account, error)
}

// Config holds account defaults.
type Config struct {
	DefaultPlan       string
	DefaultLimit      int
	MinPasswordLength int

	// BcryptCost is the bcrypt work factor. Zero uses bcrypt.DefaultCost.
	BcryptCost int
}

func (c Config) withDefaults() Config {
	if c.DefaultPlan == "" {
		c.DefaultPlan = DefaultPlan
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = DefaultRequestsLimit
	}
	if c.MinPasswordLength <= 0 {
		c.MinPasswordLength = DefaultMinPasswordLength
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	return c
}

// Accounts registers accounts and verifies logins.
type Accounts struct {
	store  AccountStore
	config Config
	logger *slog.Logger

	// dummyHash is compared against on unknown emails so that login takes
	// the same time whether or not the account exists.
	dummyHash []byte
}

// NewAccounts creates the account service.
func NewAccounts(store AccountStore, config Config) *Accounts {
	config = config.withDefaults()
	dummy, _ := bcrypt.GenerateFromPassword([]byte("feedback-dummy-password"), config.BcryptCost)

	return &Accounts{
		store:     store,
		config:    config,
		logger:    slog.Default().With("component", "auth"),
		dummyHash: dummy,
	}
}

// Register creates an account with a fresh API key and the default plan
// and limit.
//
// Errors: ErrInvalidEmail, ErrWeakPassword, storage.ErrDuplicateEmail.
func (a *Accounts) Register(ctx context.Context, email, password string) (*storage.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len([]rune(password)) < a.config.MinPasswordLength {
		return nil, fmt.Errorf("%w: at least %d characters required", ErrWeakPassword, a.config.MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return a.create(ctx, email, string(hash), a.config.DefaultPlan, a.config.DefaultLimit)
}

// CreateWithoutPassword creates an account that can only authenticate with
// its API key. Used by the "keys create" command.
func (a *Accounts) CreateWithoutPassword(ctx context.Context, email, plan string, limit int) (*storage.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if plan == "" {
		plan = a.config.DefaultPlan
	}
	if limit <= 0 {
		limit = a.config.DefaultLimit
	}
	return a.create(ctx, email, "", plan, limit)
}

func (a *Accounts) create(ctx context.Context, email, passwordHash, plan string, limit int) (*storage.Account, error) {
	for attempt := 1; ; attempt++ {
		account := &storage.Account{
			ID:            uuid.NewString(),
			Email:         email,
			PasswordHash:  passwordHash,
			APIKey:        GenerateAPIKey(),
			Plan:          plan,
			RequestsLimit: limit,
		}

		err := a.store.CreateAccount(ctx, account)
		if err == nil {
			a.logger.InfoContext(ctx, "account registered",
				"account_id", account.ID,
				"plan", account.Plan,
			)
			return account, nil
		}
		if errors.Is(err, storage.ErrDuplicateAPIKey) && attempt < maxKeyAttempts {
			continue
		}
		return nil, err
	}
}

// Login verifies email and password and returns the account.
func (a *Accounts) Login(ctx context.Context, email, password string) (*storage.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	account, err := a.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}

// normalizeEmail trims and lower-cases a bare address and rejects anything
// else, including display-name forms such as "Ann <ann@example.com>".
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return email, nil
}
