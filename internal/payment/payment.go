package payment

import (
	"net/http"

	"github.com/shopspring/decimal"
)

// Gateway verifies an inbound provider callback and extracts its outcome.
// A callback that fails verification yields ErrInvalidSignature.
type Gateway interface {
	Provider() Provider
	ParseCallback(r *http.Request) (*Outcome, error)
}

// URLBuilder produces the provider redirect a buyer follows to pay.
type URLBuilder interface {
	BuildPaymentURL(orderID int64, orderNumber string, amount decimal.Decimal, clientIP string) (string, error)
}
