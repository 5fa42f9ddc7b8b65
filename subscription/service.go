package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* Service represents the management surface for subscriptions
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the business operations for subscription management
type UseCase interface {
	Create(ctx context.Context, targetURL, secret string, eventTypes []string) (Subscription, error)
	Get(ctx context.Context, id string) (Subscription, error)
	List(ctx context.Context, offset, limit int) ([]Subscription, error)
	Update(ctx context.Context, id, targetURL, secret string, eventTypes []string) (Subscription, error)
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store     Store
	directory *Directory
	log       zerolog.Logger
}

// NewService creates a new subscription service with dependency injection
func NewService(store Store, directory *Directory, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		directory: directory,
		log:       log,
	}
}

// Create registers a new delivery target.
func (s *Service) Create(ctx context.Context, targetURL, secret string, eventTypes []string) (Subscription, error) {
	now := time.Now().UTC()
	sub := Subscription{
		ID:         uuid.New().String(),
		TargetURL:  targetURL,
		Secret:     secret,
		EventTypes: eventTypes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := sub.Validate(); err != nil {
		return Subscription{}, fmt.Errorf("validating subscription: %w", err)
	}

	if err := s.store.Insert(ctx, sub); err != nil {
		return Subscription{}, fmt.Errorf("inserting subscription: %w", err)
	}

	// Invalidate only after the durable write has committed, so a
	// concurrent reader can at worst repopulate with the new row.
	s.invalidate(ctx, sub.ID)
	s.log.Info().Str("subscription_id", sub.ID).Str("target_url", sub.TargetURL).Msg("subscription created")
	return sub, nil
}

// Get resolves a subscription through the cache-aside directory.
func (s *Service) Get(ctx context.Context, id string) (Subscription, error) {
	return s.directory.Get(ctx, id)
}

// List returns a page of subscriptions straight from the store.
func (s *Service) List(ctx context.Context, offset, limit int) ([]Subscription, error) {
	subs, err := s.store.SelectAll(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subs, nil
}

// Update replaces the target URL, secret and allow-list, bumping UpdatedAt.
func (s *Service) Update(ctx context.Context, id, targetURL, secret string, eventTypes []string) (Subscription, error) {
	existing, err := s.store.Select(ctx, id)
	if err != nil {
		return Subscription{}, err
	}

	existing.TargetURL = targetURL
	existing.Secret = secret
	existing.EventTypes = eventTypes
	existing.UpdatedAt = time.Now().UTC()
	if err := existing.Validate(); err != nil {
		return Subscription{}, fmt.Errorf("validating subscription: %w", err)
	}

	if err := s.store.Update(ctx, existing); err != nil {
		return Subscription{}, fmt.Errorf("updating subscription: %w", err)
	}

	s.invalidate(ctx, id)
	s.log.Info().Str("subscription_id", id).Msg("subscription updated")
	return existing, nil
}

// Delete removes the subscription; the store cascades the delete to its
// webhooks and their attempts.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.log.Info().Str("subscription_id", id).Msg("subscription deleted")
	return nil
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if err := s.directory.Invalidate(ctx, id); err != nil {
		// Stale reads self-correct within one cache TTL.
		s.log.Warn().Err(err).Str("subscription_id", id).Msg("cache invalidation failed")
	}
}
