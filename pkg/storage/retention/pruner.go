package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Deleter is the slice of the store the pruner needs.
type Deleter interface {
	DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain analysis records.
	// 0 means keep records forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string
}

// Pruner deletes analysis records that fall outside the retention period.
// Account usage counters are lifetime totals and are not affected.
type Pruner struct {
	store  Deleter
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// NewPruner creates a new retention pruner.
func NewPruner(store Deleter, config Config) *Pruner {
	return &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "storage.retention"),
		now:    time.Now,
	}
}

// Prune deletes records older than the retention period and returns how
// many were removed. It is a no-op when RetentionDays is 0.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	cutoff := p.now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.store.DeleteAnalysesBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune analyses older than %d days: %w", p.config.RetentionDays, err)
	}

	p.logger.Info("pruned analysis records",
		"deleted_count", deleted,
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	return deleted, nil
}
