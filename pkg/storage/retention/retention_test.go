package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeleter struct {
	cutoffs []time.Time
	deleted int64
	err     error
}

func (f *fakeDeleter) DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, f.err
}

func TestPruner_Prune(t *testing.T) {
	now := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)

	t.Run("deletes records past retention", func(t *testing.T) {
		store := &fakeDeleter{deleted: 7}
		p := NewPruner(store, Config{RetentionDays: 30})
		p.now = func() time.Time { return now }

		deleted, err := p.Prune(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(7), deleted)
		require.Len(t, store.cutoffs, 1)
		assert.Equal(t, now.AddDate(0, 0, -30), store.cutoffs[0])
	})

	t.Run("disabled retention is a no-op", func(t *testing.T) {
		store := &fakeDeleter{}
		p := NewPruner(store, Config{})

		deleted, err := p.Prune(context.Background())
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Empty(t, store.cutoffs)
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		boom := errors.New("disk full")
		p := NewPruner(&fakeDeleter{err: boom}, Config{RetentionDays: 1})

		_, err := p.Prune(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

func TestScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid daily schedule",
			config:      Config{RetentionDays: 90, PruneSchedule: "0 3 * * *"},
			wantRunning: true,
		},
		{
			name:   "retention disabled",
			config: Config{PruneSchedule: "0 3 * * *"},
		},
		{
			name:   "empty schedule",
			config: Config{RetentionDays: 90},
		},
		{
			name:      "invalid schedule",
			config:    Config{RetentionDays: 90, PruneSchedule: "invalid cron"},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(NewPruner(&fakeDeleter{}, tt.config))
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := s.Start(ctx)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRunning, s.IsRunning())

			if tt.wantRunning {
				next := s.NextRun()
				require.NotNil(t, next)
				assert.True(t, next.After(time.Now()))
			} else {
				assert.Nil(t, s.NextRun())
			}

			s.Stop()
			assert.False(t, s.IsRunning())
		})
	}
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewScheduler(NewPruner(&fakeDeleter{}, Config{RetentionDays: 1, PruneSchedule: "@hourly"}))
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, s.Start(ctx))
	require.True(t, s.IsRunning())

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
