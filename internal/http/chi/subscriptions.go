package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/marcelsud/webhook-courier/subscription"
)

/*
* Representa a assinatura na camada web, por isso ela tem as tags json
 */
type subscriptionRequest struct {
	TargetURL  string   `json:"target_url"`
	Secret     string   `json:"secret"`
	EventTypes []string `json:"event_types"`
}

/*
* Representa a assinatura na camada web
 */
type subscriptionResponse struct {
	ID         string    `json:"id"`
	TargetURL  string    `json:"target_url"`
	EventTypes []string  `json:"event_types,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toSubscriptionResponse(sub subscription.Subscription) subscriptionResponse {
	// The secret is write-only: it never leaves the API.
	return subscriptionResponse{
		ID:         sub.ID,
		TargetURL:  sub.TargetURL,
		EventTypes: sub.EventTypes,
		CreatedAt:  sub.CreatedAt,
		UpdatedAt:  sub.UpdatedAt,
	}
}

func postSubscription(subscriptionService subscription.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sr subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&sr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sub, err := subscriptionService.Create(r.Context(), sr.TargetURL, sr.Secret, sr.EventTypes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(toSubscriptionResponse(sub)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func getSubscriptions(subscriptionService subscription.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pagination(r, 0, 50)

		subs, err := subscriptionService.List(r.Context(), offset, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		result := make([]subscriptionResponse, 0, len(subs))
		for _, sub := range subs {
			result = append(result, toSubscriptionResponse(sub))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func getSubscription(subscriptionService subscription.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		sub, err := subscriptionService.Get(r.Context(), id)
		if errors.Is(err, subscription.ErrNotFound) {
			http.Error(w, "subscription not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toSubscriptionResponse(sub)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func putSubscription(subscriptionService subscription.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var sr subscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&sr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		sub, err := subscriptionService.Update(r.Context(), id, sr.TargetURL, sr.Secret, sr.EventTypes)
		if errors.Is(err, subscription.ErrNotFound) {
			http.Error(w, "subscription not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(toSubscriptionResponse(sub)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func deleteSubscription(subscriptionService subscription.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		err := subscriptionService.Delete(r.Context(), id)
		if errors.Is(err, subscription.ErrNotFound) {
			http.Error(w, "subscription not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

// pagination reads offset and limit query parameters with defaults
func pagination(r *http.Request, defaultOffset, defaultLimit int) (offset, limit int) {
	offset, limit = defaultOffset, defaultLimit
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return offset, limit
}
