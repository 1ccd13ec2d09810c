package handler

import (
	"net/http"
	"strings"

	"storefront-be/internal/apperr"
	"storefront-be/internal/coupon"
	"storefront-be/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CouponHandler struct {
	coupons coupon.Service
}

func NewCouponHandler(coupons coupon.Service) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

func (h *CouponHandler) Routes(r chi.Router) {
	r.Get("/", h.listValid)
	r.Post("/apply", h.apply)
	r.Get("/verify/{code}", h.verify)
}

type applyCouponRequest struct {
	Code        string          `json:"code" validate:"required,max=50"`
	OrderAmount decimal.Decimal `json:"orderAmount"`
}

func (h *CouponHandler) apply(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	if !req.OrderAmount.IsPositive() {
		transport.WriteError(r.Context(), w, apperr.ErrValidation.
			WithMessage("Validation failed").
			WithDetails(map[string]any{"orderAmount": "must be greater than 0"}))
		return
	}

	preview, err := h.coupons.Preview(r.Context(), strings.TrimSpace(req.Code), req.OrderAmount)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, preview)
}

func (h *CouponHandler) verify(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		transport.WriteError(r.Context(), w, apperr.ErrValidation.WithMessage("Coupon code is required"))
		return
	}

	view, err := h.coupons.Verify(r.Context(), code)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusOK, view, "Coupon is valid")
}

func (h *CouponHandler) listValid(w http.ResponseWriter, r *http.Request) {
	page, err := transport.QueryInt(r, "page", 1)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	size, err := transport.QueryInt(r, "size", 20)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	coupons, err := h.coupons.ListValid(r.Context(), page, size)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, coupons)
}
