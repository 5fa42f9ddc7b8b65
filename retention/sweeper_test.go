package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPruner struct {
	cutoff   time.Time
	attempts int64
	webhooks int64
	err      error
}

func (p *stubPruner) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, int64, error) {
	p.cutoff = cutoff
	return p.attempts, p.webhooks, p.err
}

func TestSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("success - cutoff is now minus window", func(t *testing.T) {
		pruner := &stubPruner{attempts: 12, webhooks: 3}
		sweeper := NewSweeper(pruner, 72*time.Hour, zerolog.Nop())

		before := time.Now().UTC().Add(-72 * time.Hour)
		attempts, webhooks, err := sweeper.Sweep(ctx)
		after := time.Now().UTC().Add(-72 * time.Hour)

		require.NoError(t, err)
		assert.Equal(t, int64(12), attempts)
		assert.Equal(t, int64(3), webhooks)
		assert.False(t, pruner.cutoff.Before(before))
		assert.False(t, pruner.cutoff.After(after))
	})

	t.Run("error - purge failure is wrapped", func(t *testing.T) {
		pruner := &stubPruner{err: errors.New("db down")}
		sweeper := NewSweeper(pruner, time.Hour, zerolog.Nop())

		_, _, err := sweeper.Sweep(ctx)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "purging delivery history")
	})
}

func TestStartRejectsBadSchedule(t *testing.T) {
	sweeper := NewSweeper(&stubPruner{}, time.Hour, zerolog.Nop())

	err := sweeper.Start("not a cron expression")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduling retention sweep")
}
