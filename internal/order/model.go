package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipping   Status = "SHIPPING"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
	StatusReturned   Status = "RETURNED"
)

type PaymentMethod string

const (
	PaymentCOD          PaymentMethod = "COD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentVNPay        PaymentMethod = "VNPAY"
	PaymentMoMo         PaymentMethod = "MOMO"
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCOD, PaymentBankTransfer, PaymentVNPay, PaymentMoMo, PaymentCreditCard:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type ShippingInfo struct {
	ReceiverName     string
	ReceiverPhone    string
	ShippingAddress  string
	ShippingCity     *string
	ShippingDistrict *string
}

// Item is a line of an order. Its product fields are a snapshot taken at
// checkout and never change afterwards.
type Item struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Price       decimal.Decimal
	Quantity    int
	Size        *string
	Color       *string
	ImageURL    *string
	Subtotal    decimal.Decimal
}

type Order struct {
	ID             int64
	OrderNumber    string
	UserID         int64
	CustomerEmail  string
	Status         Status
	Subtotal       decimal.Decimal
	ShippingFee    decimal.Decimal
	DiscountAmount decimal.Decimal
	CouponCode     *string
	TotalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	PaymentStatus  PaymentStatus
	Shipping       ShippingInfo
	Note           *string
	Items          []Item
	CreatedAt      time.Time
	UpdatedAt      time.Time
	CompletedAt    *time.Time
	CancelledAt    *time.Time
	CancelReason   *string
}

// AddItem returns a copy of o with item appended and the subtotal updated.
func (o Order) AddItem(item Item) Order {
	items := make([]Item, len(o.Items), len(o.Items)+1)
	copy(items, o.Items)
	o.Items = append(items, item)
	o.Subtotal = o.Subtotal.Add(item.Subtotal)
	return o
}

// ComputeTotal is subtotal + shipping - discount, floored at zero.
func ComputeTotal(subtotal, shippingFee, discount decimal.Decimal) decimal.Decimal {
	total := subtotal.Add(shippingFee).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

type CheckoutInput struct {
	CouponCode    *string
	PaymentMethod PaymentMethod
	Shipping      ShippingInfo
	Note          *string
}

type ListFilter struct {
	Keyword *string
	Status  *Status
	Page    int
	Size    int
}

type ListResult struct {
	Orders     []*Order
	Page       int
	Size       int
	TotalItems int
	TotalPages int
}
