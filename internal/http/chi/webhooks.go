package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/marcelsud/webhook-courier/delivery/signature"
	"github.com/marcelsud/webhook-courier/metrics"
	"github.com/marcelsud/webhook-courier/subscription"
)

/* HTTP layer DTOs for the delivery API
 * Separate from domain entities to avoid leaking internal structure
 */

// ingestResponse represents the API response when an event is accepted
type ingestResponse struct {
	Status    string `json:"status"`
	WebhookID string `json:"webhook_id,omitempty"`
	EventType string `json:"event_type,omitempty"`
}

// webhookStatusResponse represents the delivery state of one webhook
type webhookStatusResponse struct {
	ID             string            `json:"id"`
	SubscriptionID string            `json:"subscription_id"`
	EventType      string            `json:"event_type,omitempty"`
	IngestedAt     time.Time         `json:"ingested_at"`
	Status         string            `json:"status"`
	LatestAttempt  *attemptResponse  `json:"latest_attempt,omitempty"`
	Attempts       []attemptResponse `json:"attempts"`
}

// attemptResponse represents one ledger entry in the API
type attemptResponse struct {
	ID            string     `json:"id"`
	WebhookID     string     `json:"webhook_id"`
	AttemptNumber int        `json:"attempt_number"`
	AttemptedAt   time.Time  `json:"attempted_at"`
	Outcome       string     `json:"outcome"`
	HTTPStatus    int        `json:"http_status,omitempty"`
	ErrorDetail   string     `json:"error_detail,omitempty"`
	NextAttemptAt *time.Time `json:"next_attempt_at,omitempty"`
}

func toAttemptResponse(att delivery.Attempt) attemptResponse {
	return attemptResponse{
		ID:            att.ID,
		WebhookID:     att.WebhookID,
		AttemptNumber: att.Number,
		AttemptedAt:   att.AttemptedAt,
		Outcome:       att.Outcome.String(),
		HTTPStatus:    att.HTTPStatus,
		ErrorDetail:   att.ErrorDetail,
		NextAttemptAt: att.NextAttemptAt,
	}
}

// postEvent handles POST /v1/subscriptions/:id/events
func postEvent(deliveryService delivery.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subscriptionID := chi.URLParam(r, "id")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		result, err := deliveryService.Ingest(r.Context(), subscriptionID, body, r.Header.Get(signature.Header))
		if err != nil {
			status := ingestErrorStatus(err)
			if status == http.StatusInternalServerError {
				http.Error(w, "internal error", status)
			} else {
				http.Error(w, err.Error(), status)
			}
			return
		}

		response := ingestResponse{
			Status:    "accepted",
			WebhookID: result.WebhookID,
			EventType: result.EventType,
		}
		if result.Filtered {
			response.Status = "filtered"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// ingestErrorStatus maps ingestion gate errors to HTTP status codes
func ingestErrorStatus(err error) int {
	switch {
	case errors.Is(err, subscription.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, delivery.ErrMalformedPayload),
		errors.Is(err, delivery.ErrEventTypeRequired):
		return http.StatusBadRequest
	case errors.Is(err, delivery.ErrMissingSignature),
		errors.Is(err, delivery.ErrInvalidSignatureFormat):
		return http.StatusUnauthorized
	case errors.Is(err, delivery.ErrSignatureMismatch):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// getWebhook handles GET /v1/webhooks/:id
func getWebhook(deliveryService delivery.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		report, err := deliveryService.Status(r.Context(), id)
		if errors.Is(err, delivery.ErrNotFound) {
			http.Error(w, "webhook not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		response := webhookStatusResponse{
			ID:             report.Webhook.ID,
			SubscriptionID: report.Webhook.SubscriptionID,
			EventType:      report.Webhook.EventType,
			IngestedAt:     report.Webhook.IngestedAt,
			Status:         report.Webhook.Status.String(),
			Attempts:       make([]attemptResponse, 0, len(report.Attempts)),
		}
		if report.LatestAttempt != nil {
			latest := toAttemptResponse(*report.LatestAttempt)
			response.LatestAttempt = &latest
		}
		for _, att := range report.Attempts {
			response.Attempts = append(response.Attempts, toAttemptResponse(att))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// getSubscriptionAttempts handles GET /v1/subscriptions/:id/attempts
func getSubscriptionAttempts(deliveryService delivery.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		_, limit := pagination(r, 0, 50)

		attempts, err := deliveryService.RecentAttempts(r.Context(), id, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		result := make([]attemptResponse, 0, len(attempts))
		for _, att := range attempts {
			result = append(result, toAttemptResponse(att))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// getAttempts handles GET /v1/attempts
func getAttempts(deliveryService delivery.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pagination(r, 0, 50)

		attempts, err := deliveryService.ListAttempts(r.Context(), offset, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		result := make([]attemptResponse, 0, len(attempts))
		for _, att := range attempts {
			result = append(result, toAttemptResponse(att))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// getMetrics handles GET /v1/metrics
func getMetrics(collector metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := collector.Collect(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snapshot); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
