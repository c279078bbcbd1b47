package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/feedback/pkg/config"
	"mercator-hq/feedback/pkg/storage"
	"mercator-hq/feedback/pkg/storage/retention"
)

var pruneFlags struct {
	days int
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete analysis records older than the retention period",
	Long: `Run retention pruning once, outside the server's schedule.

Records older than retention.days are deleted. Account usage counters are
lifetime totals and are not changed.

Examples:
  # Prune with the configured retention
  feedback prune

  # Keep only the last 30 days
  feedback prune --days 30`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneFlags.days, "days", 0, "override retention.days")
}

func runPrune(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, cfg *config.Config, store storage.Store) error {
		days := cfg.Retention.Days
		if pruneFlags.days > 0 {
			days = pruneFlags.days
		}
		if days <= 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Retention disabled (retention.days is 0), nothing to prune")
			return nil
		}

		deleted, err := retention.NewPruner(store, retention.Config{RetentionDays: days}).Prune(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %d record(s) older than %d day(s)\n", deleted, days)
		return nil
	})
}
