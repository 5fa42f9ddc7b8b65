package queue

import (
	"context"
	"time"
)

/* Job is the unit of work handed from the ingestion gate to the
 * delivery workers. The queue maintains the attempt counter so that
 * attempt numbers never depend on a concurrently-read ledger count.
 */
type Job struct {
	WebhookID string `json:"webhook_id"`
	Attempt   int    `json:"attempt"`

	// StreamID identifies the underlying queue message. It is set by the
	// queue on dequeue and required for Ack.
	StreamID string `json:"-"`
}

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 */

// Producer submits jobs for immediate or delayed execution
type Producer interface {
	Enqueue(ctx context.Context, job Job) error
	/* EnqueueAfter schedules the job to become ready once the delay
	 * has elapsed. Used by the retry scheduler for backoff.
	 */
	EnqueueAfter(ctx context.Context, job Job, delay time.Duration) error
}

// Consumer pulls ready jobs and acknowledges finished ones
type Consumer interface {
	/* Dequeue returns ready jobs, blocking briefly when none are
	 * available. The queue guarantees at most one active execution of
	 * a given job instance at a time; unacknowledged jobs are
	 * redelivered (at-least-once).
	 */
	Dequeue(ctx context.Context) ([]Job, error)
	Ack(ctx context.Context, job Job) error
}

// Queue is the full job system contract
type Queue interface {
	Producer
	Consumer
	Close(ctx context.Context) error
}

/* Handler processes a single job. A non-nil retryAfter asks the runner
 * to re-submit the job for the next attempt once the delay elapses;
 * nil means the job is done. An error leaves the job unacknowledged for
 * redelivery.
 */
type Handler interface {
	Handle(ctx context.Context, job Job) (retryAfter *time.Duration, err error)
}

// Heartbeater reports worker liveness to the job system
type Heartbeater interface {
	Beat(ctx context.Context, workerID, status string) error
}
