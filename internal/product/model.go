package product

import "github.com/shopspring/decimal"

// FreeSize is the size of the single variant created for products that are
// sold without explicit variants.
const FreeSize = "FREESIZE"

type Variant struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	Size      string  `json:"size"`
	Color     *string `json:"color,omitempty"`
	Stock     int     `json:"stock"`
}

type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL *string         `json:"imageUrl,omitempty"`
	Variants []Variant       `json:"variants"`
}

// TotalStock sums stock over every variant.
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}
