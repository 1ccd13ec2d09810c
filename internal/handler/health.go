package handler

import (
	"context"
	"net/http"
	"time"

	"storefront-be/internal/metrics"
	"storefront-be/internal/transport"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db      Pinger
	metrics *metrics.Registry
	started time.Time
}

func NewHealthHandler(db Pinger, m *metrics.Registry) *HealthHandler {
	return &HealthHandler{db: db, metrics: m, started: time.Now()}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.started).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			payload["status"] = "degraded"
			payload["database"] = err.Error()
			transport.WriteJSON(w, http.StatusServiceUnavailable, payload)
			return
		}
	}

	transport.WriteJSON(w, http.StatusOK, payload)
}

// Metrics serves the registry for a Prometheus scraper.
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.metrics == nil {
		transport.WriteError(r.Context(), w, errRouteNotFound.WithMessage("metrics are disabled"))
		return
	}
	h.metrics.Handler().ServeHTTP(w, r)
}
