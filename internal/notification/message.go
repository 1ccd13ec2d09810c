package notification

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindOrderConfirmation Kind = "ORDER_CONFIRMATION"
	KindOrderStatusUpdate Kind = "ORDER_STATUS_UPDATE"
)

type LineSnapshot struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Size        *string         `json:"size,omitempty"`
	Color       *string         `json:"color,omitempty"`
}

// OrderSnapshot is the order as it was when the event happened.
type OrderSnapshot struct {
	OrderID         int64           `json:"orderId"`
	OrderNumber     string          `json:"orderNumber"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"paymentStatus"`
	PaymentMethod   string          `json:"paymentMethod"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ReceiverName    string          `json:"receiverName"`
	ReceiverPhone   string          `json:"receiverPhone"`
	ShippingAddress string          `json:"shippingAddress"`
	CancelReason    *string         `json:"cancelReason,omitempty"`
	Lines           []LineSnapshot  `json:"lines"`
}

type Message struct {
	ID             string        `json:"id"`
	Kind           Kind          `json:"kind"`
	RecipientEmail string        `json:"recipientEmail"`
	Order          OrderSnapshot `json:"order"`
	EnqueuedAt     time.Time     `json:"enqueuedAt"`
	Attempts       int           `json:"attempts,omitempty"`
	LastError      string        `json:"lastError,omitempty"`
}

func NewMessage(kind Kind, recipient string, order OrderSnapshot) Message {
	return Message{
		ID:             ulid.Make().String(),
		Kind:           kind,
		RecipientEmail: recipient,
		Order:          order,
		EnqueuedAt:     time.Now().UTC(),
	}
}
