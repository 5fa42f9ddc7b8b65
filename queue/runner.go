package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* Runner hosts a pool of independent workers pulling jobs from the
 * queue. Jobs for different webhooks run fully in parallel; ordering
 * per webhook comes from the retry scheduler, which only re-submits a
 * job after the previous attempt is committed.
 */
type Runner struct {
	queue     Queue
	handler   Handler
	heartbeat Heartbeater
	workers   int
	log       zerolog.Logger
}

// NewRunner creates a Runner with the given worker count.
// heartbeat may be nil when the queue has no liveness reporting.
func NewRunner(queue Queue, handler Handler, heartbeat Heartbeater, workers int, log zerolog.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		queue:     queue,
		handler:   handler,
		heartbeat: heartbeat,
		workers:   workers,
		log:       log,
	}
}

// Run blocks until ctx is cancelled, then waits for in-flight attempts
// to finish. Unfinished jobs stay pending in the queue and are
// redelivered on the next start.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		workerID := fmt.Sprintf("worker-%s", uuid.New().String()[:8])
		go func() {
			defer wg.Done()
			r.work(ctx, workerID)
		}()
	}
	wg.Wait()
}

func (r *Runner) work(ctx context.Context, workerID string) {
	log := r.log.With().Str("worker_id", workerID).Logger()
	log.Info().Msg("worker started")

	for {
		if ctx.Err() != nil {
			log.Info().Msg("worker stopped")
			return
		}

		r.beat(ctx, workerID, "idle")

		jobs, err := r.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("worker stopped")
				return
			}
			log.Error().Err(err).Msg("dequeuing jobs")
			continue
		}

		for _, job := range jobs {
			r.beat(ctx, workerID, "processing")
			r.process(ctx, log, job)
		}
	}
}

func (r *Runner) process(ctx context.Context, log zerolog.Logger, job Job) {
	retryAfter, err := r.handler.Handle(ctx, job)
	if err != nil {
		// Leave the job unacknowledged so the queue redelivers it.
		log.Error().Err(err).Str("webhook_id", job.WebhookID).Int("attempt", job.Attempt).Msg("handling job")
		return
	}

	if retryAfter != nil {
		next := Job{WebhookID: job.WebhookID, Attempt: job.Attempt + 1}
		if err := r.queue.EnqueueAfter(ctx, next, *retryAfter); err != nil {
			// Keep the current job pending rather than lose the retry.
			log.Error().Err(err).Str("webhook_id", job.WebhookID).Int("attempt", next.Attempt).Msg("scheduling retry")
			return
		}
		log.Info().Str("webhook_id", job.WebhookID).Int("attempt", next.Attempt).Dur("delay", *retryAfter).Msg("retry scheduled")
	}

	if err := r.queue.Ack(ctx, job); err != nil {
		log.Error().Err(err).Str("webhook_id", job.WebhookID).Msg("acknowledging job")
	}
}

func (r *Runner) beat(ctx context.Context, workerID, status string) {
	if r.heartbeat == nil {
		return
	}
	if err := r.heartbeat.Beat(ctx, workerID, status); err != nil {
		r.log.Warn().Err(err).Str("worker_id", workerID).Msg("heartbeat failed")
	}
}
