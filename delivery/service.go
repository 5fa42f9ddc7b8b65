package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-courier/delivery/payload"
	"github.com/marcelsud/webhook-courier/delivery/signature"
	"github.com/marcelsud/webhook-courier/queue"
	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/rs/zerolog"
)

// Ingestion gate errors. Each one short-circuits before a webhook or
// job is created.
var (
	ErrMalformedPayload       = errors.New("malformed payload")
	ErrMissingSignature       = errors.New("missing signature header")
	ErrInvalidSignatureFormat = errors.New("invalid signature header format")
	ErrSignatureMismatch      = errors.New("signature mismatch")
	ErrEventTypeRequired      = errors.New("event type filter configured but event_type field missing")
)

// SubscriptionResolver resolves subscriptions on the ingestion and
// delivery hot paths. Satisfied by *subscription.Directory.
type SubscriptionResolver interface {
	Get(ctx context.Context, id string) (subscription.Subscription, error)
}

// IngestResult reports the outcome of an accepted ingestion.
// Filtered results carry no webhook id: the event passed every gate but
// the allow-list excluded it, so nothing was persisted or enqueued.
type IngestResult struct {
	WebhookID string
	EventType string
	Filtered  bool
}

// StatusReport is the full delivery state of one webhook.
type StatusReport struct {
	Webhook       Webhook
	LatestAttempt *Attempt
	Attempts      []Attempt
}

// UseCase defines the business operations of the delivery engine's edge
type UseCase interface {
	Ingest(ctx context.Context, subscriptionID string, rawBody []byte, signatureHeader string) (IngestResult, error)
	Status(ctx context.Context, webhookID string) (StatusReport, error)
	RecentAttempts(ctx context.Context, subscriptionID string, limit int) ([]Attempt, error)
	ListAttempts(ctx context.Context, offset, limit int) ([]Attempt, error)
}

type Service struct {
	repo     Repository
	resolver SubscriptionResolver
	jobs     queue.Producer
	log      zerolog.Logger
}

// NewService creates a new delivery service with dependency injection
func NewService(repo Repository, resolver SubscriptionResolver, jobs queue.Producer, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		resolver: resolver,
		jobs:     jobs,
		log:      log,
	}
}

/* Ingest validates an inbound event and hands off a delivery job.
 * Gates run in order and each failure short-circuits with no side
 * effects: resolve subscription, parse payload, authenticate, filter.
 * Only then is a Webhook persisted and a job submitted.
 */
func (s *Service) Ingest(ctx context.Context, subscriptionID string, rawBody []byte, signatureHeader string) (IngestResult, error) {
	sub, err := s.resolver.Get(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			return IngestResult{}, subscription.ErrNotFound
		}
		return IngestResult{}, fmt.Errorf("resolving subscription: %w", err)
	}

	parsed, err := payload.Parse(rawBody)
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	canonical, err := parsed.Canonical()
	if err != nil {
		return IngestResult{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if sub.Secret != "" {
		if signatureHeader == "" {
			return IngestResult{}, ErrMissingSignature
		}
		digest, err := signature.ParseHeader(signatureHeader)
		if err != nil {
			return IngestResult{}, ErrInvalidSignatureFormat
		}
		if !signature.Verify(sub.Secret, canonical, digest) {
			return IngestResult{}, ErrSignatureMismatch
		}
	}

	eventType, hasEventType := parsed.EventType()
	if sub.Filters() {
		if !hasEventType {
			return IngestResult{}, ErrEventTypeRequired
		}
		if !sub.Accepts(eventType) {
			s.log.Info().
				Str("subscription_id", subscriptionID).
				Str("event_type", eventType).
				Msg("webhook filtered by event type")
			return IngestResult{EventType: eventType, Filtered: true}, nil
		}
	}

	wh := Webhook{
		ID:             uuid.New().String(),
		SubscriptionID: subscriptionID,
		Payload:        canonical,
		EventType:      eventType,
		IngestedAt:     time.Now().UTC(),
		Status:         Queued,
	}
	if err := s.repo.CreateWebhook(ctx, wh); err != nil {
		return IngestResult{}, fmt.Errorf("storing webhook: %w", err)
	}

	if err := s.jobs.Enqueue(ctx, queue.Job{WebhookID: wh.ID, Attempt: 1}); err != nil {
		return IngestResult{}, fmt.Errorf("enqueuing delivery job: %w", err)
	}

	s.log.Info().
		Str("webhook_id", wh.ID).
		Str("subscription_id", subscriptionID).
		Msg("webhook ingested and queued")

	return IngestResult{WebhookID: wh.ID, EventType: eventType}, nil
}

// Status returns the current state of a webhook with its full attempt
// history in chronological order.
func (s *Service) Status(ctx context.Context, webhookID string) (StatusReport, error) {
	wh, err := s.repo.GetWebhook(ctx, webhookID)
	if err != nil {
		return StatusReport{}, err
	}

	attempts, err := s.repo.ListAttemptsByWebhook(ctx, webhookID)
	if err != nil {
		return StatusReport{}, fmt.Errorf("listing attempts: %w", err)
	}

	report := StatusReport{Webhook: wh, Attempts: attempts}
	if len(attempts) > 0 {
		latest := attempts[len(attempts)-1]
		report.LatestAttempt = &latest
	}
	return report, nil
}

// RecentAttempts returns the most recent attempts for a subscription,
// newest first.
func (s *Service) RecentAttempts(ctx context.Context, subscriptionID string, limit int) ([]Attempt, error) {
	attempts, err := s.repo.ListRecentAttemptsBySubscription(ctx, subscriptionID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent attempts: %w", err)
	}
	return attempts, nil
}

// ListAttempts returns a page of all attempts, newest first.
func (s *Service) ListAttempts(ctx context.Context, offset, limit int) ([]Attempt, error) {
	attempts, err := s.repo.ListAllAttempts(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}
	return attempts, nil
}
