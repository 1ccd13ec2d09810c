package order

import (
	"time"

	"storefront-be/internal/notification"

	"github.com/shopspring/decimal"
)

type ItemView struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Size        *string         `json:"size,omitempty"`
	Color       *string         `json:"color,omitempty"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type View struct {
	ID               int64           `json:"id"`
	OrderNumber      string          `json:"orderNumber"`
	UserID           int64           `json:"userId"`
	Status           Status          `json:"status"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	ShippingFee      decimal.Decimal `json:"shippingFee"`
	DiscountAmount   decimal.Decimal `json:"discountAmount"`
	CouponCode       *string         `json:"couponCode,omitempty"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	PaymentMethod    PaymentMethod   `json:"paymentMethod"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	ReceiverName     string          `json:"receiverName"`
	ReceiverPhone    string          `json:"receiverPhone"`
	ShippingAddress  string          `json:"shippingAddress"`
	ShippingCity     *string         `json:"shippingCity,omitempty"`
	ShippingDistrict *string         `json:"shippingDistrict,omitempty"`
	Note             *string         `json:"note,omitempty"`
	Items            []ItemView      `json:"items"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
	CancelledAt      *time.Time      `json:"cancelledAt,omitempty"`
	CancelReason     *string         `json:"cancelReason,omitempty"`
}

type ListView struct {
	Orders     []View `json:"content"`
	Page       int    `json:"page"`
	Size       int    `json:"size"`
	TotalItems int    `json:"totalElements"`
	TotalPages int    `json:"totalPages"`
}

func ToView(o *Order) View {
	items := make([]ItemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Price:       it.Price,
			Quantity:    it.Quantity,
			Size:        it.Size,
			Color:       it.Color,
			ImageURL:    it.ImageURL,
			Subtotal:    it.Subtotal,
		})
	}

	return View{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		UserID:           o.UserID,
		Status:           o.Status,
		Subtotal:         o.Subtotal,
		ShippingFee:      o.ShippingFee,
		DiscountAmount:   o.DiscountAmount,
		CouponCode:       o.CouponCode,
		TotalAmount:      o.TotalAmount,
		PaymentMethod:    o.PaymentMethod,
		PaymentStatus:    o.PaymentStatus,
		ReceiverName:     o.Shipping.ReceiverName,
		ReceiverPhone:    o.Shipping.ReceiverPhone,
		ShippingAddress:  o.Shipping.ShippingAddress,
		ShippingCity:     o.Shipping.ShippingCity,
		ShippingDistrict: o.Shipping.ShippingDistrict,
		Note:             o.Note,
		Items:            items,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
		CompletedAt:      o.CompletedAt,
		CancelledAt:      o.CancelledAt,
		CancelReason:     o.CancelReason,
	}
}

func ToListView(res *ListResult) ListView {
	views := make([]View, 0, len(res.Orders))
	for _, o := range res.Orders {
		views = append(views, ToView(o))
	}
	return ListView{
		Orders:     views,
		Page:       res.Page,
		Size:       res.Size,
		TotalItems: res.TotalItems,
		TotalPages: res.TotalPages,
	}
}

// ToSnapshot captures what a notification needs to describe o.
func ToSnapshot(o *Order) notification.OrderSnapshot {
	lines := make([]notification.LineSnapshot, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, notification.LineSnapshot{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			Subtotal:    it.Subtotal,
			Size:        it.Size,
			Color:       it.Color,
		})
	}

	return notification.OrderSnapshot{
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		Subtotal:        o.Subtotal,
		ShippingFee:     o.ShippingFee,
		DiscountAmount:  o.DiscountAmount,
		TotalAmount:     o.TotalAmount,
		ReceiverName:    o.Shipping.ReceiverName,
		ReceiverPhone:   o.Shipping.ReceiverPhone,
		ShippingAddress: o.Shipping.ShippingAddress,
		CancelReason:    o.CancelReason,
		Lines:           lines,
	}
}
