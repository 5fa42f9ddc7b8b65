package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/marcelsud/webhook-courier/subscription"
)

/* PostgreSQL implementation of subscription.Store
 * The subscriptions table is the root of the cascade chain:
 * webhooks and delivery_attempts reference it with ON DELETE CASCADE,
 * so Delete here removes the full delivery history in one statement.
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

// Select fetches a subscription by id
func (r *Repository) Select(ctx context.Context, id string) (subscription.Subscription, error) {
	query := `
		SELECT id, target_url, secret, event_types, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`

	var (
		sub        subscription.Subscription
		secret     sql.NullString
		eventTypes pq.StringArray
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&sub.ID,
		&sub.TargetURL,
		&secret,
		&eventTypes,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return subscription.Subscription{}, subscription.ErrNotFound
	}
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("selecting subscription: %w", err)
	}

	sub.Secret = secret.String
	sub.EventTypes = []string(eventTypes)
	return sub, nil
}

// SelectAll returns a page of subscriptions ordered by creation time
func (r *Repository) SelectAll(ctx context.Context, offset, limit int) ([]subscription.Subscription, error) {
	query := `
		SELECT id, target_url, secret, event_types, created_at, updated_at
		FROM subscriptions
		ORDER BY created_at
		OFFSET $1 LIMIT $2
	`

	rows, err := r.DB.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("selecting subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []subscription.Subscription
	for rows.Next() {
		var (
			sub        subscription.Subscription
			secret     sql.NullString
			eventTypes pq.StringArray
		)
		if err := rows.Scan(&sub.ID, &sub.TargetURL, &secret, &eventTypes, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		sub.Secret = secret.String
		sub.EventTypes = []string(eventTypes)
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriptions: %w", err)
	}

	return subs, nil
}

// Insert stores a new subscription
func (r *Repository) Insert(ctx context.Context, sub subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, target_url, secret, event_types, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		sub.ID,
		sub.TargetURL,
		nullString(sub.Secret),
		pq.StringArray(sub.EventTypes),
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of a subscription
func (r *Repository) Update(ctx context.Context, sub subscription.Subscription) error {
	query := `
		UPDATE subscriptions
		SET target_url = $1, secret = $2, event_types = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.DB.ExecContext(ctx, query,
		sub.TargetURL,
		nullString(sub.Secret),
		pq.StringArray(sub.EventTypes),
		sub.UpdatedAt,
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("updating subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return subscription.ErrNotFound
	}

	return nil
}

// Delete removes a subscription; webhooks and attempts cascade via foreign keys
func (r *Repository) Delete(ctx context.Context, id string) error {
	query := "DELETE FROM subscriptions WHERE id = $1"

	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rows == 0 {
		return subscription.ErrNotFound
	}

	return nil
}

// Close closes the database connection
func (r *Repository) Close(ctx context.Context) error {
	if r.DB != nil {
		return r.DB.Close()
	}
	return nil
}

// CreateTable creates the subscriptions table (useful for tests)
func (r *Repository) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			target_url TEXT NOT NULL,
			secret TEXT,
			event_types TEXT[],
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	return nil
}

// DropTable removes the subscriptions table (useful for tests)
func (r *Repository) DropTable(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS subscriptions CASCADE"); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
