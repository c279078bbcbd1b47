package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/feedback/pkg/cli"
	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/storage"
	"mercator-hq/feedback/pkg/telemetry/logging"
)

var keysFlags struct {
	email    string
	plan     string
	limit    int
	output   string
	showKeys bool
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage accounts and API keys",
	Long: `Create accounts and list their API keys directly against the configured
store, without going through the HTTP API.

Subcommands:
  create - Create an account and print its API key
  list   - List accounts with usage

Examples:
  # Create an account on the default plan
  feedback keys create --email ops@example.com

  # Create an account with a larger quota
  feedback keys create --email partner@example.com --plan pro --limit 10000

  # List accounts as JSON
  feedback keys list --output json`,
}

var keysCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account and print its API key",
	Long: `Create an account without a password and print its API key.

The account cannot log in through /api/auth/login; it authenticates with
the printed key only.`,
	RunE: createKey,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Long:  `List all accounts with plan and usage. API keys are masked unless --show-keys is set.`,
	RunE:  listKeys,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysCreateCmd, keysListCmd)

	keysCreateCmd.Flags().StringVar(&keysFlags.email, "email", "", "account email (required)")
	keysCreateCmd.Flags().StringVar(&keysFlags.plan, "plan", "", "plan name (default limits.quota.default_plan)")
	keysCreateCmd.Flags().IntVar(&keysFlags.limit, "limit", 0, "lifetime request limit (default limits.quota.default_limit)")
	_ = keysCreateCmd.MarkFlagRequired("email")

	keysListCmd.Flags().StringVarP(&keysFlags.output, "output", "o", "text", "output format: text, json, csv")
	keysListCmd.Flags().BoolVar(&keysFlags.showKeys, "show-keys", false, "print full API keys")
}

// withStore loads the configuration, opens the store and runs fn. Logs go
// to stderr so that stdout carries only the command's result.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, store storage.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if _, err := setupLogging(cfg, os.Stderr); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return cli.NewCommandError(cmd.Name(), err)
	}
	defer store.Close()

	if err := fn(ctx, cfg, store); err != nil {
		return cli.NewCommandError(cmd.Name(), err)
	}
	return nil
}

func createKey(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, cfg *config.Config, store storage.Store) error {
		account, err := newAccounts(store, cfg).CreateWithoutPassword(ctx, keysFlags.email, keysFlags.plan, keysFlags.limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Account ID: %s\n", account.ID)
		fmt.Fprintf(out, "Email:      %s\n", account.Email)
		fmt.Fprintf(out, "Plan:       %s (%d requests)\n", account.Plan, account.RequestsLimit)
		fmt.Fprintf(out, "API Key:    %s\n", account.APIKey)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "⚠️  Store the API key securely; it grants access to this account's quota")
		return nil
	})
}

func listKeys(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(keysFlags.output)
	if err != nil {
		return err
	}

	return withStore(cmd, func(ctx context.Context, cfg *config.Config, store storage.Store) error {
		accounts, err := store.ListAccounts(ctx)
		if err != nil {
			return err
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newAccountTable(accounts, keysFlags.showKeys))
	})
}

// accountRow is one line of keys list output.
type accountRow struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	APIKey        string    `json:"api_key"`
	Plan          string    `json:"plan"`
	RequestsUsed  int       `json:"requests_used"`
	RequestsLimit int       `json:"requests_limit"`
	CreatedAt     time.Time `json:"created_at"`
}

type accountTable []accountRow

func newAccountTable(accounts []storage.Account, showKeys bool) accountTable {
	t := make(accountTable, 0, len(accounts))
	for _, a := range accounts {
		key := a.APIKey
		if !showKeys {
			key = logging.RedactAPIKey(key)
		}
		t = append(t, accountRow{
			ID:            a.ID,
			Email:         a.Email,
			APIKey:        key,
			Plan:          a.Plan,
			RequestsUsed:  a.RequestsUsed,
			RequestsLimit: a.RequestsLimit,
			CreatedAt:     a.CreatedAt,
		})
	}
	return t
}

func (t accountTable) Headers() []string {
	return []string{"ID", "EMAIL", "API KEY", "PLAN", "USED", "LIMIT", "CREATED"}
}

func (t accountTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.ID,
			r.Email,
			r.APIKey,
			r.Plan,
			strconv.Itoa(r.RequestsUsed),
			strconv.Itoa(r.RequestsLimit),
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}
