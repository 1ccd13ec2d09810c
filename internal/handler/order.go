package handler

import (
	"net/http"
	"strings"

	"storefront-be/internal/apperr"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/transport"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orders order.Service
}

func NewOrderHandler(orders order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Routes mounts the customer order endpoints. POST / is kept as an alias of
// /checkout for older clients.
func (h *OrderHandler) Routes(r chi.Router) {
	r.Post("/", h.Checkout)
	r.Get("/", h.listOrders)
	r.Get("/{id}", h.getOrder)
	r.Put("/{id}/cancel", h.cancelOrder)
}

type checkoutRequest struct {
	CouponCode       *string `json:"couponCode" validate:"omitempty,max=50"`
	PaymentMethod    string  `json:"paymentMethod" validate:"required,oneof=COD BANK_TRANSFER VNPAY MOMO CREDIT_CARD"`
	ReceiverName     string  `json:"receiverName" validate:"required,max=100"`
	ReceiverPhone    string  `json:"receiverPhone" validate:"required,phone_vn"`
	ShippingAddress  string  `json:"shippingAddress" validate:"required,max=500"`
	ShippingCity     *string `json:"shippingCity" validate:"omitempty,max=100"`
	ShippingDistrict *string `json:"shippingDistrict" validate:"omitempty,max=100"`
	Note             *string `json:"note" validate:"omitempty,max=500"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

type checkoutResponse struct {
	order.View
	PaymentInstructions []string `json:"paymentInstructions"`
}

func (req checkoutRequest) toInput() order.CheckoutInput {
	return order.CheckoutInput{
		CouponCode:    utils.TrimToNil(req.CouponCode),
		PaymentMethod: order.PaymentMethod(req.PaymentMethod),
		Shipping: order.ShippingInfo{
			ReceiverName:     strings.TrimSpace(req.ReceiverName),
			ReceiverPhone:    req.ReceiverPhone,
			ShippingAddress:  strings.TrimSpace(req.ShippingAddress),
			ShippingCity:     utils.TrimToNil(req.ShippingCity),
			ShippingDistrict: utils.TrimToNil(req.ShippingDistrict),
		},
		Note: utils.TrimToNil(req.Note),
	}
}

// Checkout places an order from the caller's cart.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	o, err := h.orders.Checkout(r.Context(), actor, req.toInput())
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	steps := payment.InjectVariables(
		payment.GetInstructions(string(o.PaymentMethod)),
		payment.InstructionVars{
			"amount":       utils.FormatVND(o.TotalAmount),
			"order_number": o.OrderNumber,
		},
	)

	transport.WriteMessage(w, http.StatusCreated, checkoutResponse{
		View:                order.ToView(o),
		PaymentInstructions: steps,
	}, "Order placed successfully")
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	// Customers only page through their own orders; keyword search is admin only.
	filter.Keyword = nil

	res, err := h.orders.ListOrders(r.Context(), actor, filter)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, order.ToListView(res))
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	o, err := h.orders.GetOrder(r.Context(), actor, id)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, order.ToView(o))
}

func (h *OrderHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	var req cancelOrderRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	o, err := h.orders.Cancel(r.Context(), actor, id, strings.TrimSpace(req.Reason))
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusOK, order.ToView(o), "Order cancelled")
}

// parseListFilter reads page, size, status and keyword query parameters.
func parseListFilter(r *http.Request) (order.ListFilter, error) {
	page, err := transport.QueryInt(r, "page", 1)
	if err != nil {
		return order.ListFilter{}, err
	}
	size, err := transport.QueryInt(r, "size", 0)
	if err != nil {
		return order.ListFilter{}, err
	}

	filter := order.ListFilter{Page: page, Size: size}

	q := r.URL.Query()
	if kw := strings.TrimSpace(q.Get("keyword")); kw != "" {
		filter.Keyword = &kw
	}
	if raw := q.Get("status"); raw != "" {
		st, ok := order.ParseStatus(strings.ToUpper(raw))
		if !ok {
			return order.ListFilter{}, apperr.ErrValidation.WithMessage("invalid status: %q", raw)
		}
		filter.Status = &st
	}
	return filter, nil
}
