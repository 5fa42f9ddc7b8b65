package subscription

import (
	"context"
	"errors"
	"time"
)

/* Small, focused interfaces following "The Go Way"
 * Interfaces abstract behavior, not things
 * Written for users of the API, not just for testing
 */

// ErrNotFound is returned when a subscription does not exist in the store.
var ErrNotFound = errors.New("subscription not found")

// ErrCacheMiss is returned by a Cache when the key is absent or unreadable.
var ErrCacheMiss = errors.New("subscription not in cache")

// Reader provides read operations for subscriptions
type Reader interface {
	Select(ctx context.Context, id string) (Subscription, error)
	SelectAll(ctx context.Context, offset, limit int) ([]Subscription, error)
}

// Writer provides write operations for subscriptions
type Writer interface {
	Insert(ctx context.Context, sub Subscription) error
	Update(ctx context.Context, sub Subscription) error
	/* Delete removes the subscription and cascades to its webhooks
	 * and their delivery attempts
	 */
	Delete(ctx context.Context, id string) error
}

// Store is the durable source of truth for subscriptions
type Store interface {
	Reader
	Writer
	Close(ctx context.Context) error
}

/* Cache holds a read-only copy of subscription data with a bounded
 * lifetime. It is never the source of truth: every entry expires and
 * every write path invalidates explicitly.
 */
type Cache interface {
	// Get returns the cached subscription or ErrCacheMiss.
	Get(ctx context.Context, id string) (Subscription, error)
	Set(ctx context.Context, sub Subscription, ttl time.Duration) error
	// Invalidate removes the entry. It is idempotent: absent keys are a no-op.
	Invalidate(ctx context.Context, id string) error
}
