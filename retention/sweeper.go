package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

/* Retention sweep
 * Terminal webhooks older than the retention window are purged together
 * with their attempt history. Webhooks still queued are never touched,
 * however old they are: a slow retry schedule must not lose data.
 */

// Sweeper runs the retention purge on a cron schedule.
type Sweeper struct {
	pruner delivery.Pruner
	window time.Duration
	cron   *cron.Cron
	log    zerolog.Logger
}

// NewSweeper creates a sweeper that removes terminal webhooks older than window.
func NewSweeper(pruner delivery.Pruner, window time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		pruner: pruner,
		window: window,
		log:    log,
	}
}

// Sweep performs a single purge pass and returns what was removed.
func (s *Sweeper) Sweep(ctx context.Context) (attempts int64, webhooks int64, err error) {
	cutoff := time.Now().UTC().Add(-s.window)

	attempts, webhooks, err = s.pruner.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("purging delivery history: %w", err)
	}

	s.log.Info().
		Time("cutoff", cutoff).
		Int64("attempts_removed", attempts).
		Int64("webhooks_removed", webhooks).
		Msg("retention sweep completed")
	return attempts, webhooks, nil
}

// Start schedules the sweep with the given cron expression (standard five
// field syntax) and begins running it.
func (s *Sweeper) Start(schedule string) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(schedule, func() {
		if _, _, err := s.Sweep(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("retention sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling retention sweep: %w", err)
	}

	s.cron.Start()
	s.log.Info().Str("schedule", schedule).Msg("retention sweeper started")
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.log.Info().Msg("retention sweeper stopped")
	}
}
