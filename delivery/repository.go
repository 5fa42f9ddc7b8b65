package delivery

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a webhook does not exist in the store.
var ErrNotFound = errors.New("webhook not found")

// WebhookReader provides read operations for webhooks
type WebhookReader interface {
	GetWebhook(ctx context.Context, id string) (Webhook, error)
}

// WebhookWriter provides write operations for webhooks
type WebhookWriter interface {
	CreateWebhook(ctx context.Context, wh Webhook) error
	UpdateWebhookStatus(ctx context.Context, id string, status Status) error
}

/* Ledger is the append-only attempt history.
 * RecordAttempt commits the attempt row and the optional webhook status
 * change in one transaction, so an attempt is never visible without its
 * effect on the webhook (and vice versa).
 */
type Ledger interface {
	RecordAttempt(ctx context.Context, att Attempt, status *Status) error
	ListAttemptsByWebhook(ctx context.Context, webhookID string) ([]Attempt, error)
	ListRecentAttemptsBySubscription(ctx context.Context, subscriptionID string, limit int) ([]Attempt, error)
	ListAllAttempts(ctx context.Context, offset, limit int) ([]Attempt, error)
}

// Stats exposes aggregate counters for observability
type Stats interface {
	CountWebhooksByStatus(ctx context.Context, status Status) (int64, error)
	CountSucceededAttemptsSince(ctx context.Context, since time.Time) (int64, error)
}

// Pruner removes aged delivery history
type Pruner interface {
	/* PurgeOlderThan deletes attempts older than the cutoff and
	 * terminal webhooks ingested before it. Queued webhooks are never
	 * purged regardless of age.
	 */
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (attempts, webhooks int64, err error)
}

/* Interface composition - combining small interfaces into larger ones
 * This is preferred over large monolithic interfaces
 */
type Repository interface {
	WebhookReader
	WebhookWriter
	Ledger
	Stats
	Pruner
	Close(ctx context.Context) error
}
