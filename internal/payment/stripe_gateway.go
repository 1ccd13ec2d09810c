package payment

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"storefront-be/internal/logger"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

const (
	maxStripeBodyBytes = int64(65536)
	stripeOrderRefKey  = "order_ref"
	stripeSigHeader    = "Stripe-Signature"

	eventIntentSucceeded = "payment_intent.succeeded"
	eventIntentFailed    = "payment_intent.payment_failed"
)

// StripeGateway verifies Stripe webhook deliveries for CREDIT_CARD orders.
// The order id travels in the PaymentIntent metadata under "order_ref".
type StripeGateway struct {
	webhookSecret string
}

func NewStripeGateway(webhookSecret string) *StripeGateway {
	if webhookSecret == "" {
		logger.L().Warn("Stripe webhook secret is empty")
	}
	return &StripeGateway{webhookSecret: webhookSecret}
}

func (g *StripeGateway) Provider() Provider {
	return ProviderStripe
}

// ParseCallback returns (nil, nil) for verified events that carry no payment
// outcome.
func (g *StripeGateway) ParseCallback(r *http.Request) (*Outcome, error) {
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "payment"),
		zap.String("provider", string(ProviderStripe)),
	)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxStripeBodyBytes+1))
	if err != nil {
		return nil, ErrInvalidCallback.WithMessage("failed to read body")
	}
	if int64(len(body)) > maxStripeBodyBytes {
		return nil, ErrInvalidCallback.WithMessage("payload too large")
	}

	event, err := webhook.ConstructEventWithOptions(body, r.Header.Get(stripeSigHeader), g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Warn("stripe signature verification failed", zap.Error(err))
		return nil, ErrInvalidSignature
	}

	var success bool
	switch string(event.Type) {
	case eventIntentSucceeded:
		success = true
	case eventIntentFailed:
		success = false
	default:
		log.Info("unhandled stripe event type", zap.String("event_type", string(event.Type)))
		return nil, nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, ErrInvalidCallback.WithMessage("invalid payment intent payload")
	}

	orderID, err := strconv.ParseInt(intent.Metadata[stripeOrderRefKey], 10, 64)
	if err != nil || orderID <= 0 {
		return nil, ErrInvalidCallback.WithMessage("payment intent %s has no valid %s", intent.ID, stripeOrderRefKey)
	}

	return &Outcome{
		Provider:  ProviderStripe,
		EventID:   event.ID,
		EventType: string(event.Type),
		OrderID:   orderID,
		Success:   success,
		Payload:   body,
	}, nil
}
