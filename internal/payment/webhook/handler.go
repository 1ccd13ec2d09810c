package webhook

import (
	"net"
	"net/http"

	"storefront-be/internal/apperr"
	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/transport"

	"go.uber.org/zap"
)

// VNPay is the redirect-style gateway: it signs payment URLs and verifies
// the return/IPN callback.
type VNPay interface {
	payment.Gateway
	payment.URLBuilder
}

// Handler serves the payment redirect and the provider callbacks.
type Handler struct {
	processor payment.Processor
	orders    order.Service
	vnpay     VNPay
	stripe    payment.Gateway
}

func NewWebhookHandler(processor payment.Processor, orders order.Service, vnpay VNPay, stripe payment.Gateway) *Handler {
	return &Handler{
		processor: processor,
		orders:    orders,
		vnpay:     vnpay,
		stripe:    stripe,
	}
}

type paymentURLResponse struct {
	OrderID    int64  `json:"orderId"`
	PaymentURL string `json:"paymentUrl"`
}

type callbackResponse struct {
	OrderID   int64  `json:"orderId,omitempty"`
	Paid      bool   `json:"paid"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	Provider  string `json:"provider"`
}

var errProviderDisabled = apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "payment provider is not configured")

// VNPayURL returns the signed VNPay redirect for one of the caller's
// PENDING VNPAY orders.
func (h *Handler) VNPayURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.vnpay == nil {
		transport.WriteError(ctx, w, errProviderDisabled)
		return
	}

	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		transport.WriteError(ctx, w, apperr.ErrUnauthorized)
		return
	}

	orderID, err := transport.PathID(r.URL.Query().Get("orderId"))
	if err != nil {
		transport.WriteError(ctx, w, err)
		return
	}

	o, err := h.orders.GetOrder(ctx, actor, orderID)
	if err != nil {
		transport.WriteError(ctx, w, err)
		return
	}
	if o.PaymentMethod != order.PaymentVNPay || o.Status != order.StatusPending || o.PaymentStatus != order.PaymentPending {
		transport.WriteError(ctx, w, payment.ErrNotPayable)
		return
	}

	url, err := h.vnpay.BuildPaymentURL(o.ID, o.OrderNumber, o.TotalAmount, clientIP(r))
	if err != nil {
		transport.WriteError(ctx, w, err)
		return
	}

	transport.WriteMessage(w, http.StatusOK, paymentURLResponse{OrderID: o.ID, PaymentURL: url}, "Payment URL created successfully")
}

// VNPayCallback handles both the browser return and the IPN call.
func (h *Handler) VNPayCallback(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.vnpay)
}

func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.stripe)
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, gw payment.Gateway) {
	ctx := r.Context()
	if gw == nil {
		transport.WriteError(ctx, w, errProviderDisabled)
		return
	}
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("provider", string(gw.Provider())),
	)

	// Step 1 – verify and parse
	outcome, err := gw.ParseCallback(r)
	if err != nil {
		log.Warn("payment callback rejected", zap.Error(err))
		transport.WriteError(ctx, w, err)
		return
	}
	if outcome == nil {
		transport.WriteJSON(w, http.StatusOK, callbackResponse{Ignored: true, Provider: string(gw.Provider())})
		return
	}

	// Step 2 – record and apply
	duplicate, err := h.processor.Process(ctx, outcome)
	if err != nil {
		log.Error("failed to process payment callback", zap.Int64("order_id", outcome.OrderID), zap.Error(err))
		transport.WriteError(ctx, w, err)
		return
	}

	transport.WriteJSON(w, http.StatusOK, callbackResponse{
		OrderID:   outcome.OrderID,
		Paid:      outcome.Success,
		Duplicate: duplicate,
		Provider:  string(gw.Provider()),
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
