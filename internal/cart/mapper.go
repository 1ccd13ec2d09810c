package cart

import (
	"storefront-be/internal/product"

	"github.com/shopspring/decimal"
)

type ItemView struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Size        *string         `json:"size,omitempty"`
	Color       *string         `json:"color,omitempty"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Available   int             `json:"availableStock"`
	InStock     bool            `json:"inStock"`
}

type View struct {
	ID         int64           `json:"id"`
	Items      []ItemView      `json:"items"`
	TotalItems int             `json:"totalItems"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// MapCartToView prices every line with the current product price. Lines
// whose product is missing from products are skipped.
func MapCartToView(c Cart, products map[int64]*product.Product) View {
	v := View{ID: c.ID, Items: make([]ItemView, 0, len(c.Items)), Subtotal: decimal.Zero}

	for _, it := range c.Items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}

		available := 0
		if variant, ok := product.ResolveVariant(p.Variants, it.Size, it.Color); ok {
			available = variant.Stock
		}

		sub := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		v.Items = append(v.Items, ItemView{
			ID:          it.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			ImageURL:    p.ImageURL,
			Price:       p.Price,
			Quantity:    it.Quantity,
			Size:        it.Size,
			Color:       it.Color,
			Subtotal:    sub,
			Available:   available,
			InStock:     p.TotalStock() > 0,
		})
		v.TotalItems += it.Quantity
		v.Subtotal = v.Subtotal.Add(sub)
	}

	return v
}
