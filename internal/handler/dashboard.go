package handler

import (
	"net/http"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/order"
	"storefront-be/internal/transport"

	"github.com/go-chi/chi/v5"
)

const (
	dateLayout      = "2006-01-02"
	defaultTopLimit = 10
	maxTopLimit     = 100
)

type DashboardHandler struct {
	stats order.Analytics
}

func NewDashboardHandler(stats order.Analytics) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/overview", h.overview)
	r.Get("/sales", h.sales)
	r.Get("/top-products", h.topProducts)
}

func (h *DashboardHandler) overview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.stats.Overview(r.Context())
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusOK, ov, "Dashboard overview fetched successfully")
}

func (h *DashboardHandler) sales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	raw := q.Get("period")
	if raw == "" {
		raw = string(order.PeriodDaily)
	}
	period, ok := order.ParsePeriod(raw)
	if !ok {
		transport.WriteError(r.Context(), w, apperr.ErrValidation.WithMessage("Invalid period. Must be DAILY, MONTHLY, or YEARLY"))
		return
	}

	start, err := queryDate(q.Get("startDate"), "startDate")
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	end, err := queryDate(q.Get("endDate"), "endDate")
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	if start.After(end) {
		transport.WriteError(r.Context(), w, apperr.ErrValidation.WithMessage("Start date must be before or equal to end date"))
		return
	}

	report, err := h.stats.Sales(r.Context(), period, start, end)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusOK, report, "Sales data fetched successfully")
}

func (h *DashboardHandler) topProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := transport.QueryInt(r, "limit", defaultTopLimit)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	if limit < 1 || limit > maxTopLimit {
		transport.WriteError(r.Context(), w, apperr.ErrValidation.WithMessage("Limit must be between 1 and 100"))
		return
	}

	products, err := h.stats.TopProducts(r.Context(), limit)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusOK, map[string]any{"products": products}, "Top products fetched successfully")
}

func queryDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apperr.ErrValidation.
			WithMessage("Validation failed").
			WithDetails(map[string]any{field: "is required"})
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.ErrValidation.
			WithMessage("Validation failed").
			WithDetails(map[string]any{field: "must be a date in yyyy-MM-dd format"})
	}
	return t, nil
}
