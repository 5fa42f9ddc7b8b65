package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcelsud/webhook-courier/subscription"
	_ "modernc.org/sqlite" // cgo-free SQLite driver
)

/* SQLite implementation of subscription.Store
 * Used for single-node deployments and repository tests.
 * Foreign keys are enabled on open so subscription deletes cascade
 * to webhooks and delivery attempts exactly as in PostgreSQL.
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

// Select fetches a subscription by id
func (r *Repository) Select(ctx context.Context, id string) (subscription.Subscription, error) {
	query := `
		SELECT id, target_url, secret, event_types, created_at, updated_at
		FROM subscriptions
		WHERE id = ?
	`

	row := r.DB.QueryRowContext(ctx, query, id)
	sub, err := scanSubscription(row.Scan)
	if err == sql.ErrNoRows {
		return subscription.Subscription{}, subscription.ErrNotFound
	}
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("selecting subscription: %w", err)
	}

	return sub, nil
}

// SelectAll returns a page of subscriptions ordered by creation time
func (r *Repository) SelectAll(ctx context.Context, offset, limit int) ([]subscription.Subscription, error) {
	query := `
		SELECT id, target_url, secret, event_types, created_at, updated_at
		FROM subscriptions
		ORDER BY created_at
		LIMIT ? OFFSET ?
	`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("selecting subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []subscription.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriptions: %w", err)
	}

	return subs, nil
}

// Insert stores a new subscription
func (r *Repository) Insert(ctx context.Context, sub subscription.Subscription) error {
	eventTypes, err := marshalEventTypes(sub.EventTypes)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO subscriptions (id, target_url, secret, event_types, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.DB.ExecContext(ctx, query,
		sub.ID,
		sub.TargetURL,
		nullString(sub.Secret),
		eventTypes,
		sub.CreatedAt.UTC().Format(time.RFC3339Nano),
		sub.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}

	return nil
}

// Update replaces the mutable fields of a subscription
func (r *Repository) Update(ctx context.Context, sub subscription.Subscription) error {
	eventTypes, err := marshalEventTypes(sub.EventTypes)
	if err != nil {
		return err
	}

	query := `
		UPDATE subscriptions
		SET target_url = ?, secret = ?, event_types = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.DB.ExecContext(ctx, query,
		sub.TargetURL,
		nullString(sub.Secret),
		eventTypes,
		sub.UpdatedAt.UTC().Format(time.RFC3339Nano),
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
	result, err := r.DB.ExecContext(ctx, "DELETE FROM subscriptions WHERE id = ?", id)
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
			id TEXT PRIMARY KEY,
			target_url TEXT NOT NULL,
			secret TEXT,
			event_types TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)
	`

	if _, err := r.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	return nil
}

// DropTable removes the subscriptions table (useful for tests)
func (r *Repository) DropTable(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, "DROP TABLE IF EXISTS subscriptions"); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}

	return nil
}

func scanSubscription(scan func(dest ...any) error) (subscription.Subscription, error) {
	var (
		sub        subscription.Subscription
		secret     sql.NullString
		eventTypes sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := scan(&sub.ID, &sub.TargetURL, &secret, &eventTypes, &createdAt, &updatedAt); err != nil {
		return subscription.Subscription{}, err
	}

	sub.Secret = secret.String
	if eventTypes.Valid && eventTypes.String != "" {
		if err := json.Unmarshal([]byte(eventTypes.String), &sub.EventTypes); err != nil {
			return subscription.Subscription{}, fmt.Errorf("unmarshaling event types: %w", err)
		}
	}

	var err error
	sub.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("parsing created_at: %w", err)
	}
	sub.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("parsing updated_at: %w", err)
	}

	return sub, nil
}

func marshalEventTypes(eventTypes []string) (sql.NullString, error) {
	if len(eventTypes) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(eventTypes)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshaling event types: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
