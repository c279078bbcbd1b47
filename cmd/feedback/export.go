package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/feedback/pkg/analytics"
	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/storage"
)

var exportFlags struct {
	email  string
	format string
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an account's analysis history",
	Long: `Write every analysis record of an account, oldest first, as CSV or JSON.

Examples:
  # JSON to stdout
  feedback export --email ops@example.com

  # CSV to a file
  feedback export --email ops@example.com --format csv --output history.csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.email, "email", "", "account email (required)")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", analytics.FormatJSON, "export format: csv, json")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default stdout)")
	_ = exportCmd.MarkFlagRequired("email")
}

func runExport(cmd *cobra.Command, args []string) error {
	exporter, err := analytics.NewExporter(exportFlags.format)
	if err != nil {
		return err
	}

	return withStore(cmd, func(ctx context.Context, cfg *config.Config, store storage.Store) error {
		account, err := store.GetAccountByEmail(ctx, exportFlags.email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no account registered with %s", exportFlags.email)
			}
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportFlags.output != "" {
			// #nosec G304 - User-specified output path is expected behavior for a CLI tool.
			f, err := os.OpenFile(exportFlags.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := analytics.NewService(store).Export(ctx, account, exporter, w); err != nil {
			return err
		}

		if exportFlags.output != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported history of %s to %s\n", account.Email, exportFlags.output)
		}
		return nil
	})
}
