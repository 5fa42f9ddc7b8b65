package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/marcelsud/webhook-courier/metrics"
	"github.com/marcelsud/webhook-courier/subscription"
)

/*
 * As importações devem ser feitas apenas em uma direção: para baixo. O aplicativo (api, worker) importa camadas de negócios,
 * que importam a camada de armazenamento
 */

// Handlers sets up the courier API routes
func Handlers(subscriptionService subscription.UseCase, deliveryService delivery.UseCase, collector metrics.Collector, metricsHandler http.Handler) *chi.Mux {
	logger := httplog.NewLogger("webhook-courier", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Prometheus scrape endpoint
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		// Subscription management
		r.Post("/subscriptions", postSubscription(subscriptionService).ServeHTTP)
		r.Get("/subscriptions", getSubscriptions(subscriptionService).ServeHTTP)
		r.Get("/subscriptions/{id}", getSubscription(subscriptionService).ServeHTTP)
		r.Put("/subscriptions/{id}", putSubscription(subscriptionService).ServeHTTP)
		r.Delete("/subscriptions/{id}", deleteSubscription(subscriptionService).ServeHTTP)

		// Event ingestion and delivery introspection
		r.Post("/subscriptions/{id}/events", postEvent(deliveryService).ServeHTTP)
		r.Get("/subscriptions/{id}/attempts", getSubscriptionAttempts(deliveryService).ServeHTTP)
		r.Get("/webhooks/{id}", getWebhook(deliveryService).ServeHTTP)
		r.Get("/attempts", getAttempts(deliveryService).ServeHTTP)

		// Operational snapshot in JSON
		if collector != nil {
			r.Get("/metrics", getMetrics(collector).ServeHTTP)
		}
	})

	return r
}
