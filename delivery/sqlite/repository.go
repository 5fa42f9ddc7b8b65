package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
	_ "modernc.org/sqlite" // cgo-free SQLite driver
)

/* SQLite implementation of delivery.Repository
 * Used for single-node deployments and repository tests. Timestamps are
 * stored as RFC3339Nano text so lexical ordering matches chronological
 * ordering, which the attempt listings and the retention sweep rely on.
 */

type Repository struct {
	DB *sql.DB
}

// NewRepository opens (or creates) the SQLite database at the given path.
// The foreign_keys pragma is per connection, so it goes in the DSN where
// every connection in the pool picks it up.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	return &Repository{DB: db}, nil
}

// NewRepositoryWithDB wraps an existing database handle, sharing its pool.
func NewRepositoryWithDB(db *sql.DB) *Repository {
	return &Repository{DB: db}
}

// GetWebhook fetches a webhook by id
func (r *Repository) GetWebhook(ctx context.Context, id string) (delivery.Webhook, error) {
	query := `
		SELECT id, subscription_id, payload, event_type, ingested_at, status
		FROM webhooks
		WHERE id = ?
	`

	var (
		wh         delivery.Webhook
		ingestedAt string
		status     int
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&wh.ID,
		&wh.SubscriptionID,
		&wh.Payload,
		&wh.EventType,
		&ingestedAt,
		&status,
	)
	if err == sql.ErrNoRows {
		return delivery.Webhook{}, delivery.ErrNotFound
	}
	if err != nil {
		return delivery.Webhook{}, fmt.Errorf("selecting webhook: %w", err)
	}

	wh.IngestedAt, err = time.Parse(time.RFC3339Nano, ingestedAt)
	if err != nil {
		return delivery.Webhook{}, fmt.Errorf("parsing ingested_at: %w", err)
	}
	wh.Status = delivery.Status(status)
	return wh, nil
}

// CreateWebhook stores a new webhook
func (r *Repository) CreateWebhook(ctx context.Context, wh delivery.Webhook) error {
	query := `
		INSERT INTO webhooks (id, subscription_id, payload, event_type, ingested_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.DB.ExecContext(ctx, query,
		wh.ID,
		wh.SubscriptionID,
		wh.Payload,
		wh.EventType,
		wh.IngestedAt.UTC().Format(time.RFC3339Nano),
		int(wh.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting webhook: %w", err)
	}

	return nil
}

// UpdateWebhookStatus moves a webhook to the given status
func (r *Repository) UpdateWebhookStatus(ctx context.Context, id string, status delivery.Status) error {
	result, err := r.DB.ExecContext(ctx, "UPDATE webhooks SET status = ? WHERE id = ?", int(status), id)
	if err != nil {
		return fmt.Errorf("updating webhook status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return delivery.ErrNotFound
	}

	return nil
}

// RecordAttempt appends a ledger entry and, when status is non-nil,
// updates the webhook status in the same transaction.
func (r *Repository) RecordAttempt(ctx context.Context, att delivery.Attempt, status *delivery.Status) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var nextAttemptAt sql.NullString
	if att.NextAttemptAt != nil {
		nextAttemptAt = sql.NullString{String: att.NextAttemptAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}

	query := `
		INSERT INTO delivery_attempts (id, webhook_id, attempt_number, attempted_at, outcome, http_status, error_detail, next_attempt_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (webhook_id, attempt_number) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, query,
		att.ID,
		att.WebhookID,
		att.Number,
		att.AttemptedAt.UTC().Format(time.RFC3339Nano),
		int(att.Outcome),
		nullInt(att.HTTPStatus),
		nullString(att.ErrorDetail),
		nextAttemptAt,
	)
	if err != nil {
		return fmt.Errorf("inserting attempt: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		// The attempt number is already on the ledger, which means the
		// original call committed the status update too. A redelivered
		// job must not write a second outcome for the same attempt.
		return nil
	}

	if status != nil {
		result, err := tx.ExecContext(ctx, "UPDATE webhooks SET status = ? WHERE id = ?", int(*status), att.WebhookID)
		if err != nil {
			return fmt.Errorf("updating webhook status: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("getting rows affected: %w", err)
		}
		if rows == 0 {
			return delivery.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ListAttemptsByWebhook returns the full attempt history of a webhook, oldest first
func (r *Repository) ListAttemptsByWebhook(ctx context.Context, webhookID string) ([]delivery.Attempt, error) {
	query := `
		SELECT id, webhook_id, attempt_number, attempted_at, outcome, http_status, error_detail, next_attempt_at
		FROM delivery_attempts
		WHERE webhook_id = ?
		ORDER BY attempted_at ASC
	`

	rows, err := r.DB.QueryContext(ctx, query, webhookID)
	if err != nil {
		return nil, fmt.Errorf("selecting attempts: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// ListRecentAttemptsBySubscription returns the latest attempts across all
// webhooks of a subscription, newest first
func (r *Repository) ListRecentAttemptsBySubscription(ctx context.Context, subscriptionID string, limit int) ([]delivery.Attempt, error) {
	query := `
		SELECT a.id, a.webhook_id, a.attempt_number, a.attempted_at, a.outcome, a.http_status, a.error_detail, a.next_attempt_at
		FROM delivery_attempts a
		JOIN webhooks w ON w.id = a.webhook_id
		WHERE w.subscription_id = ?
		ORDER BY a.attempted_at DESC
		LIMIT ?
	`

	rows, err := r.DB.QueryContext(ctx, query, subscriptionID, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting attempts: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// ListAllAttempts returns a page of the ledger across all webhooks, newest first
func (r *Repository) ListAllAttempts(ctx context.Context, offset, limit int) ([]delivery.Attempt, error) {
	query := `
		SELECT id, webhook_id, attempt_number, attempted_at, outcome, http_status, error_detail, next_attempt_at
		FROM delivery_attempts
		ORDER BY attempted_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("selecting attempts: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// CountWebhooksByStatus returns the number of webhooks in the given status
func (r *Repository) CountWebhooksByStatus(ctx context.Context, status delivery.Status) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhooks WHERE status = ?", int(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting webhooks: %w", err)
	}
	return count, nil
}

// CountSucceededAttemptsSince counts successful attempts recorded after the given time
func (r *Repository) CountSucceededAttemptsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM delivery_attempts WHERE outcome = ? AND attempted_at >= ?",
		int(delivery.AttemptSucceeded), since.UTC().Format(time.RFC3339Nano),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting attempts: %w", err)
	}
	return count, nil
}

// PurgeOlderThan removes terminal webhooks ingested before the cutoff
func (r *Repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (attempts int64, webhooks int64, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	cutoffText := cutoff.UTC().Format(time.RFC3339Nano)

	attemptsResult, err := tx.ExecContext(ctx, `
		DELETE FROM delivery_attempts
		WHERE webhook_id IN (
			SELECT id FROM webhooks WHERE ingested_at < ? AND status IN (?, ?)
		)
	`, cutoffText, int(delivery.Succeeded), int(delivery.Failed))
	if err != nil {
		return 0, 0, fmt.Errorf("deleting attempts: %w", err)
	}
	attempts, err = attemptsResult.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("getting rows affected: %w", err)
	}

	webhooksResult, err := tx.ExecContext(ctx,
		"DELETE FROM webhooks WHERE ingested_at < ? AND status IN (?, ?)",
		cutoffText, int(delivery.Succeeded), int(delivery.Failed),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("deleting webhooks: %w", err)
	}
	webhooks, err = webhooksResult.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("getting rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("committing transaction: %w", err)
	}

	return attempts, webhooks, nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// CreateTables creates the webhooks and delivery_attempts tables (useful for tests)
func (r *Repository) CreateTables(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS webhooks (
			id TEXT PRIMARY KEY,
			subscription_id TEXT NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
			payload BLOB NOT NULL,
			event_type TEXT NOT NULL,
			ingested_at TEXT NOT NULL,
			status INTEGER NOT NULL
		)
		`,
		"CREATE INDEX IF NOT EXISTS idx_webhooks_subscription_id ON webhooks (subscription_id)",
		`
		CREATE TABLE IF NOT EXISTS delivery_attempts (
			id TEXT PRIMARY KEY,
			webhook_id TEXT NOT NULL REFERENCES webhooks(id) ON DELETE CASCADE,
			attempt_number INTEGER NOT NULL,
			attempted_at TEXT NOT NULL,
			outcome INTEGER NOT NULL,
			http_status INTEGER,
			error_detail TEXT,
			next_attempt_at TEXT,
			UNIQUE (webhook_id, attempt_number)
		)
		`,
		"CREATE INDEX IF NOT EXISTS idx_delivery_attempts_webhook_attempted ON delivery_attempts (webhook_id, attempted_at)",
	}

	for _, query := range queries {
		if _, err := r.DB.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("creating tables: %w", err)
		}
	}

	return nil
}

// DropTables removes the webhooks and delivery_attempts tables (useful for tests)
func (r *Repository) DropTables(ctx context.Context) error {
	for _, query := range []string{
		"DROP TABLE IF EXISTS delivery_attempts",
		"DROP TABLE IF EXISTS webhooks",
	} {
		if _, err := r.DB.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("dropping tables: %w", err)
		}
	}

	return nil
}

func scanAttempts(rows *sql.Rows) ([]delivery.Attempt, error) {
	var attempts []delivery.Attempt
	for rows.Next() {
		var (
			att           delivery.Attempt
			attemptedAt   string
			outcome       int
			httpStatus    sql.NullInt64
			errorDetail   sql.NullString
			nextAttemptAt sql.NullString
		)
		if err := rows.Scan(
			&att.ID,
			&att.WebhookID,
			&att.Number,
			&attemptedAt,
			&outcome,
			&httpStatus,
			&errorDetail,
			&nextAttemptAt,
		); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}

		var err error
		att.AttemptedAt, err = time.Parse(time.RFC3339Nano, attemptedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing attempted_at: %w", err)
		}
		if nextAttemptAt.Valid {
			next, err := time.Parse(time.RFC3339Nano, nextAttemptAt.String)
			if err != nil {
				return nil, fmt.Errorf("parsing next_attempt_at: %w", err)
			}
			att.NextAttemptAt = &next
		}

		att.Outcome = delivery.Outcome(outcome)
		att.HTTPStatus = int(httpStatus.Int64)
		att.ErrorDetail = errorDetail.String
		attempts = append(attempts, att)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attempts: %w", err)
	}

	return attempts, nil
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
