package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/marcelsud/webhook-courier/delivery"
)

/* PostgreSQL implementation of delivery.Repository
 * delivery_attempts is append-only: rows are only ever inserted here and
 * removed by PurgeOlderThan. RecordAttempt commits the ledger row and
 * any webhook status change in one transaction.
 */

type Repository struct {
	DB *sql.DB
}

// NewRepository creates a new PostgreSQL repository with the default pool (25, 5, 5 min)
func NewRepository(connectionString string) (*Repository, error) {
	return NewRepositoryWithPoolConfig(connectionString, 25, 5, 5)
}

// NewRepositoryWithPoolConfig creates a repository with a customizable connection pool
func NewRepositoryWithPoolConfig(connectionString string, maxOpenConns, maxIdleConns, maxLifeMinutes int) (*Repository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}
	if maxIdleConns > 0 {
		db.SetMaxIdleConns(maxIdleConns)
	}
	if maxLifeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(maxLifeMinutes) * time.Minute)
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
		WHERE id = $1
	`

	var (
		wh     delivery.Webhook
		status int
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&wh.ID,
		&wh.SubscriptionID,
		&wh.Payload,
		&wh.EventType,
		&wh.IngestedAt,
		&status,
	)
	if err == sql.ErrNoRows {
		return delivery.Webhook{}, delivery.ErrNotFound
	}
	if err != nil {
		return delivery.Webhook{}, fmt.Errorf("selecting webhook: %w", err)
	}

	wh.Status = delivery.Status(status)
	return wh, nil
}

// CreateWebhook stores a new webhook
func (r *Repository) CreateWebhook(ctx context.Context, wh delivery.Webhook) error {
	query := `
		INSERT INTO webhooks (id, subscription_id, payload, event_type, ingested_at, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		wh.ID,
		wh.SubscriptionID,
		wh.Payload,
		wh.EventType,
		wh.IngestedAt,
		int(wh.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting webhook: %w", err)
	}

	return nil
}

// UpdateWebhookStatus moves a webhook to the given status
func (r *Repository) UpdateWebhookStatus(ctx context.Context, id string, status delivery.Status) error {
	result, err := r.DB.ExecContext(ctx, "UPDATE webhooks SET status = $1 WHERE id = $2", int(status), id)
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

	query := `
		INSERT INTO delivery_attempts (id, webhook_id, attempt_number, attempted_at, outcome, http_status, error_detail, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (webhook_id, attempt_number) DO NOTHING
	`

	result, err := tx.ExecContext(ctx, query,
		att.ID,
		att.WebhookID,
		att.Number,
		att.AttemptedAt,
		int(att.Outcome),
		nullInt(att.HTTPStatus),
		nullString(att.ErrorDetail),
		att.NextAttemptAt,
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
		result, err := tx.ExecContext(ctx, "UPDATE webhooks SET status = $1 WHERE id = $2", int(*status), att.WebhookID)
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
		WHERE webhook_id = $1
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
		WHERE w.subscription_id = $1
		ORDER BY a.attempted_at DESC
		LIMIT $2
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
		OFFSET $1 LIMIT $2
	`

	rows, err := r.DB.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting attempts: %w", err)
	}
	defer rows.Close()

	return scanAttempts(rows)
}

// CountWebhooksByStatus returns the number of webhooks in the given status
func (r *Repository) CountWebhooksByStatus(ctx context.Context, status delivery.Status) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhooks WHERE status = $1", int(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting webhooks: %w", err)
	}
	return count, nil
}

// CountSucceededAttemptsSince counts successful attempts recorded after the given time
func (r *Repository) CountSucceededAttemptsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM delivery_attempts WHERE outcome = $1 AND attempted_at >= $2",
		int(delivery.AttemptSucceeded), since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting attempts: %w", err)
	}
	return count, nil
}

// PurgeOlderThan removes terminal webhooks ingested before the cutoff. Their
// attempts go first via the foreign key, then the webhooks themselves.
func (r *Repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (attempts int64, webhooks int64, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	attemptsResult, err := tx.ExecContext(ctx, `
		DELETE FROM delivery_attempts
		WHERE webhook_id IN (
			SELECT id FROM webhooks WHERE ingested_at < $1 AND status IN ($2, $3)
		)
	`, cutoff, int(delivery.Succeeded), int(delivery.Failed))
	if err != nil {
		return 0, 0, fmt.Errorf("deleting attempts: %w", err)
	}
	attempts, err = attemptsResult.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("getting rows affected: %w", err)
	}

	webhooksResult, err := tx.ExecContext(ctx,
		"DELETE FROM webhooks WHERE ingested_at < $1 AND status IN ($2, $3)",
		cutoff, int(delivery.Succeeded), int(delivery.Failed),
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
			id UUID PRIMARY KEY,
			subscription_id UUID NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
			payload BYTEA NOT NULL,
			event_type TEXT NOT NULL,
			ingested_at TIMESTAMPTZ NOT NULL,
			status INTEGER NOT NULL
		)
		`,
		"CREATE INDEX IF NOT EXISTS idx_webhooks_subscription_id ON webhooks (subscription_id)",
		`
		CREATE TABLE IF NOT EXISTS delivery_attempts (
			id UUID PRIMARY KEY,
			webhook_id UUID NOT NULL REFERENCES webhooks(id) ON DELETE CASCADE,
			attempt_number INTEGER NOT NULL,
			attempted_at TIMESTAMPTZ NOT NULL,
			outcome INTEGER NOT NULL,
			http_status INTEGER,
			error_detail TEXT,
			next_attempt_at TIMESTAMPTZ,
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
		"DROP TABLE IF EXISTS delivery_attempts CASCADE",
		"DROP TABLE IF EXISTS webhooks CASCADE",
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
			att         delivery.Attempt
			outcome     int
			httpStatus  sql.NullInt64
			errorDetail sql.NullString
		)
		if err := rows.Scan(
			&att.ID,
			&att.WebhookID,
			&att.Number,
			&att.AttemptedAt,
			&outcome,
			&httpStatus,
			&errorDetail,
			&att.NextAttemptAt,
		); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
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
