package payment

import (
	"encoding/json"
	"time"
)

type Provider string

const (
	ProviderVNPay  Provider = "VNPAY"
	ProviderStripe Provider = "STRIPE"
)

// Outcome is a verified gateway result for one order.
type Outcome struct {
	Provider  Provider
	EventID   string
	EventType string
	OrderID   int64
	Success   bool
	Payload   json.RawMessage
}

// Callback is a stored callback delivery.
type Callback struct {
	ID             int64
	Provider       Provider
	EventID        string
	EventType      string
	OrderID        int64
	SignatureValid bool
	Payload        json.RawMessage
	ProcessedAt    *time.Time
	ProcessError   *string
	CreatedAt      time.Time
}
