package order

import (
	"context"

	"storefront-be/internal/cart"
	"storefront-be/internal/db"
	"storefront-be/internal/inventory"

	"github.com/shopspring/decimal"
)

// Assembler turns cart lines into order item snapshots. It reads stock but
// never changes it.
type Assembler struct {
	ledger inventory.Ledger
}

func NewAssembler(ledger inventory.Ledger) *Assembler {
	return &Assembler{ledger: ledger}
}

func (a *Assembler) Assemble(ctx context.Context, q db.Querier, lines []cart.Item) ([]Item, decimal.Decimal, error) {
	draft := Order{Subtotal: decimal.Zero}

	for _, line := range lines {
		av, err := a.ledger.Available(ctx, q, lineOf(line))
		if err != nil {
			return nil, decimal.Zero, err
		}
		if err := inventory.CheckQuantity(av, line.Quantity); err != nil {
			return nil, decimal.Zero, err
		}

		price := av.Product.Price
		draft = draft.AddItem(Item{
			ProductID:   av.Product.ID,
			ProductName: av.Product.Name,
			Price:       price,
			Quantity:    line.Quantity,
			Size:        line.Size,
			Color:       line.Color,
			ImageURL:    av.Product.ImageURL,
			Subtotal:    price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}

	return draft.Items, draft.Subtotal, nil
}

func lineOf(it cart.Item) inventory.Line {
	return inventory.Line{
		ProductID: it.ProductID,
		Size:      it.Size,
		Color:     it.Color,
		Quantity:  it.Quantity,
	}
}

func itemLines(items []Item) []inventory.Line {
	lines := make([]inventory.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, inventory.Line{
			ProductID: it.ProductID,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
		})
	}
	return lines
}
