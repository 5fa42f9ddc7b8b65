package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-courier/queue"
	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/rs/zerolog"
)

// maxErrorDetail caps the stored error detail, including response body
// previews, at 500 characters.
const maxErrorDetail = 500

// Backoff returns the delay before the attempt following attemptNumber:
// base * 2^(n-1). With the 10s default this yields 10s, 20s, 40s, ...
func Backoff(base time.Duration, attemptNumber int) time.Duration {
	if attemptNumber < 1 {
		attemptNumber = 1
	}
	return base * time.Duration(1<<(attemptNumber-1))
}

/* Result is the explicit outcome of one delivery attempt. A non-nil
 * NextDelay asks the job system to re-submit after the delay; nil means
 * the webhook reached a terminal status. Skipped results touched
 * nothing: no ledger entry, no state change.
 */
type Result struct {
	Outcome   Outcome
	NextDelay *time.Duration
	Skipped   bool
}

/* Worker executes delivery attempts. Each attempt loads the webhook,
 * resolves its subscription, performs the HTTP POST, classifies the
 * outcome, and commits exactly one ledger row together with any status
 * change before the retry decision leaves this process.
 */
type Worker struct {
	repo        Repository
	resolver    SubscriptionResolver
	client      *http.Client
	maxAttempts int
	baseDelay   time.Duration
	log         zerolog.Logger
}

// NewWorker creates a delivery worker. The client's timeout bounds each
// outbound attempt.
func NewWorker(repo Repository, resolver SubscriptionResolver, client *http.Client, maxAttempts int, baseDelay time.Duration, log zerolog.Logger) *Worker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Worker{
		repo:        repo,
		resolver:    resolver,
		client:      client,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		log:         log,
	}
}

// Handle adapts Attempt to the job system contract. Panics degrade to a
// terminal ledger entry so the worker process stays available and no
// webhook is left queued with no job scheduled.
func (w *Worker) Handle(ctx context.Context, job queue.Job) (retryAfter *time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error().
				Str("webhook_id", job.WebhookID).
				Int("attempt", job.Attempt).
				Interface("panic", r).
				Msg("delivery attempt panicked")
			w.finalize(ctx, job.WebhookID, job.Attempt, fmt.Sprintf("internal error: %v", r))
			retryAfter, err = nil, nil
		}
	}()

	result, err := w.Attempt(ctx, job.WebhookID, job.Attempt)
	if err != nil {
		return nil, err
	}
	return result.NextDelay, nil
}

// Attempt performs one delivery try. A store error before anything was
// recorded is returned so the job system can redeliver; an attempt
// number may be skipped that way but is never reused.
func (w *Worker) Attempt(ctx context.Context, webhookID string, attemptNumber int) (Result, error) {
	log := w.log.With().Str("webhook_id", webhookID).Int("attempt", attemptNumber).Logger()

	wh, err := w.repo.GetWebhook(ctx, webhookID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Deleted concurrently; nothing to deliver, nothing to record.
			log.Warn().Msg("webhook gone, skipping delivery")
			return Result{Skipped: true}, nil
		}
		return Result{}, fmt.Errorf("loading webhook: %w", err)
	}

	if wh.Status.IsTerminal() {
		// Redelivered job for an already-finished webhook.
		log.Warn().Str("status", wh.Status.String()).Msg("webhook already terminal, skipping delivery")
		return Result{Skipped: true}, nil
	}

	sub, err := w.resolver.Get(ctx, wh.SubscriptionID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			// Nothing to retry against.
			detail := fmt.Sprintf("subscription %s not found", wh.SubscriptionID)
			log.Error().Msg(detail)
			return w.recordTerminalFailure(ctx, webhookID, attemptNumber, detail)
		}
		detail := truncate(fmt.Sprintf("resolving subscription: %v", err), maxErrorDetail)
		log.Error().Err(err).Msg("unexpected error resolving subscription")
		return w.recordTerminalFailure(ctx, webhookID, attemptNumber, detail)
	}

	httpStatus, detail, delivered := w.post(ctx, sub.TargetURL, wh.Payload)

	if delivered {
		att := Attempt{
			ID:          uuid.New().String(),
			WebhookID:   webhookID,
			Number:      attemptNumber,
			AttemptedAt: time.Now().UTC(),
			Outcome:     AttemptSucceeded,
			HTTPStatus:  httpStatus,
		}
		status := Succeeded
		if err := w.repo.RecordAttempt(ctx, att, &status); err != nil {
			return Result{}, fmt.Errorf("recording attempt: %w", err)
		}
		log.Info().Int("http_status", httpStatus).Msg("webhook delivered")
		return Result{Outcome: AttemptSucceeded}, nil
	}

	if attemptNumber < w.maxAttempts {
		delay := Backoff(w.baseDelay, attemptNumber)
		next := time.Now().UTC().Add(delay)
		att := Attempt{
			ID:            uuid.New().String(),
			WebhookID:     webhookID,
			Number:        attemptNumber,
			AttemptedAt:   time.Now().UTC(),
			Outcome:       AttemptFailed,
			HTTPStatus:    httpStatus,
			ErrorDetail:   detail,
			NextAttemptAt: &next,
		}
		// Webhook stays queued; the retry is scheduled by the caller.
		if err := w.repo.RecordAttempt(ctx, att, nil); err != nil {
			return Result{}, fmt.Errorf("recording attempt: %w", err)
		}
		log.Warn().
			Int("http_status", httpStatus).
			Str("detail", detail).
			Dur("next_delay", delay).
			Msg("delivery attempt failed, retry scheduled")
		return Result{Outcome: AttemptFailed, NextDelay: &delay}, nil
	}

	// Budget exhausted: the one ledger row for this try is terminal.
	att := Attempt{
		ID:          uuid.New().String(),
		WebhookID:   webhookID,
		Number:      attemptNumber,
		AttemptedAt: time.Now().UTC(),
		Outcome:     AttemptPermanentlyFailed,
		HTTPStatus:  httpStatus,
		ErrorDetail: detail,
	}
	status := Failed
	if err := w.repo.RecordAttempt(ctx, att, &status); err != nil {
		return Result{}, fmt.Errorf("recording attempt: %w", err)
	}
	log.Error().
		Int("http_status", httpStatus).
		Str("detail", detail).
		Msg("webhook permanently failed, retry budget exhausted")
	return Result{Outcome: AttemptPermanentlyFailed}, nil
}

// post issues the delivery request and classifies the response.
// delivered is true only for 2xx status codes.
func (w *Worker) post(ctx context.Context, targetURL string, body []byte) (httpStatus int, detail string, delivered bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, targetURL, bytes.NewReader(body))
	if err != nil {
		return 0, truncate(fmt.Sprintf("building request: %v", err), maxErrorDetail), false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		// Timeouts and transport errors land here.
		return 0, truncate(fmt.Sprintf("request error: %v", err), maxErrorDetail), false
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, "", true
	}

	detail = fmt.Sprintf("http status %d", resp.StatusCode)
	preview, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorDetail))
	if err == nil && len(preview) > 0 {
		detail = truncate(fmt.Sprintf("%s: %s", detail, preview), maxErrorDetail)
	}
	return resp.StatusCode, detail, false
}

// recordTerminalFailure writes a permanently_failed row and marks the
// webhook failed in one transaction.
func (w *Worker) recordTerminalFailure(ctx context.Context, webhookID string, attemptNumber int, detail string) (Result, error) {
	att := Attempt{
		ID:          uuid.New().String(),
		WebhookID:   webhookID,
		Number:      attemptNumber,
		AttemptedAt: time.Now().UTC(),
		Outcome:     AttemptPermanentlyFailed,
		ErrorDetail: truncate(detail, maxErrorDetail),
	}
	status := Failed
	if err := w.repo.RecordAttempt(ctx, att, &status); err != nil {
		return Result{}, fmt.Errorf("recording attempt: %w", err)
	}
	return Result{Outcome: AttemptPermanentlyFailed}, nil
}

// finalize is the last-resort path for unexpected failures: best effort,
// never propagates.
func (w *Worker) finalize(ctx context.Context, webhookID string, attemptNumber int, detail string) {
	if _, err := w.recordTerminalFailure(ctx, webhookID, attemptNumber, detail); err != nil {
		w.log.Error().Err(err).Str("webhook_id", webhookID).Msg("recording terminal failure")
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
