package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage  DiscountType = "PERCENTAGE"
	DiscountFixedAmount DiscountType = "FIXED_AMOUNT"
)

type Coupon struct {
	ID             int64
	Code           string
	Name           string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	MinOrderAmount *decimal.Decimal
	MaxDiscount    *decimal.Decimal
	StartDate      time.Time
	EndDate        time.Time
	UsageLimit     *int
	UsageCount     int
	IsActive       bool
}

// IsValid reports whether the coupon can be redeemed at now.
func (c *Coupon) IsValid(now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return false
	}
	return c.UsageLimit == nil || c.UsageCount < *c.UsageLimit
}

// ComputeDiscount returns the discount the coupon grants on amount, rounded
// half-up to two decimal places.
func ComputeDiscount(c *Coupon, amount decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal

	switch c.DiscountType {
	case DiscountPercentage:
		discount = amount.Mul(c.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
		if c.MaxDiscount != nil && discount.GreaterThan(*c.MaxDiscount) {
			discount = *c.MaxDiscount
		}
	case DiscountFixedAmount:
		discount = decimal.Min(c.DiscountValue, amount)
	default:
		discount = decimal.Zero
	}

	return discount.Round(2)
}

// Preview is the result of trying a coupon against an amount without
// redeeming it.
type Preview struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Valid          bool            `json:"valid"`
	Message        string          `json:"message"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// View is the public representation of a redeemable coupon.
type View struct {
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	DiscountType   DiscountType     `json:"discountType"`
	DiscountValue  decimal.Decimal  `json:"discountValue"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount,omitempty"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount,omitempty"`
	EndDate        time.Time        `json:"endDate"`
}

func ToView(c *Coupon) View {
	return View{
		Code:           c.Code,
		Name:           c.Name,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		MinOrderAmount: c.MinOrderAmount,
		MaxDiscount:    c.MaxDiscount,
		EndDate:        c.EndDate,
	}
}
