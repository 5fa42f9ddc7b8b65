package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

/* Directory is the cache-aside read path used by the delivery engine.
 * Every read consults the cache first; misses fall through to the store
 * and repopulate the cache with a bounded TTL. The cache is an
 * optimization only: any cache failure degrades to a store read.
 */
type Directory struct {
	store Reader
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewDirectory creates a Directory with the given cache TTL.
func NewDirectory(store Reader, cache Cache, ttl time.Duration, log zerolog.Logger) *Directory {
	return &Directory{
		store: store,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

// Get resolves a subscription, serving from cache when possible.
// Returns ErrNotFound when the subscription does not exist; not-found
// results are never cached. A nil cache disables caching entirely.
func (d *Directory) Get(ctx context.Context, id string) (Subscription, error) {
	if d.cache != nil {
		sub, err := d.cache.Get(ctx, id)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			// Cache trouble is not a reason to fail the read.
			d.log.Warn().Err(err).Str("subscription_id", id).Msg("subscription cache read failed")
		}
	}

	sub, err := d.store.Select(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Subscription{}, ErrNotFound
		}
		return Subscription{}, fmt.Errorf("selecting subscription: %w", err)
	}

	if d.cache != nil {
		if err := d.cache.Set(ctx, sub, d.ttl); err != nil {
			d.log.Warn().Err(err).Str("subscription_id", id).Msg("subscription cache populate failed")
		}
	}

	return sub, nil
}

// Invalidate drops any cached copy of the subscription. Idempotent.
func (d *Directory) Invalidate(ctx context.Context, id string) error {
	if d.cache == nil {
		return nil
	}
	if err := d.cache.Invalidate(ctx, id); err != nil {
		return fmt.Errorf("invalidating subscription cache: %w", err)
	}
	return nil
}
