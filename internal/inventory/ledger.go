package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

// Line identifies a quantity of one product variant.
type Line struct {
	ProductID int64
	Size      *string
	Color     *string
	Quantity  int
}

// Availability is the resolved variant of a line together with its product.
type Availability struct {
	Product *product.Product
	Variant product.Variant
}

func (a Availability) Stock() int {
	return a.Variant.Stock
}

type Ledger interface {
	Available(ctx context.Context, q db.Querier, line Line) (Availability, error)
	Reserve(ctx context.Context, q db.Querier, lines ...Line) error
	Restore(ctx context.Context, q db.Querier, lines ...Line) error
}

type ledger struct {
	products product.Repository
}

func NewLedger(products product.Repository) Ledger {
	return &ledger{products: products}
}

func (l *ledger) Available(ctx context.Context, q db.Querier, line Line) (Availability, error) {
	p, err := l.products.GetByID(ctx, q, line.ProductID)
	if err != nil {
		if errors.Is(err, product.ErrProductNotFound) {
			return Availability{}, ErrVariantNotFound.WithMessage(
				"Product %d is no longer available. Please remove it from your cart.", line.ProductID)
		}
		return Availability{}, err
	}

	v, ok := product.ResolveVariant(p.Variants, line.Size, line.Color)
	if !ok {
		return Availability{}, ErrVariantNotFound.WithMessage(
			"Product variant not found for '%s' (Size: %s). Please remove it from your cart.",
			p.Name, deref(line.Size))
	}

	return Availability{Product: p, Variant: v}, nil
}

// Reserve decrements stock for every line with one conditional statement per
// line, so stock never goes negative. Variant rows are updated in ascending id
// order so concurrent reservations lock them in the same order.
func (l *ledger) Reserve(ctx context.Context, q db.Querier, lines ...Line) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("method", "Reserve"),
	)

	resolved := make([]resolvedLine, 0, len(lines))
	for _, line := range lines {
		av, err := l.Available(ctx, q, line)
		if err != nil {
			return err
		}
		resolved = append(resolved, resolvedLine{line: line, av: av})
	}
	sortByVariant(resolved)

	for _, r := range resolved {
		res, err := q.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock - $1
			WHERE id = $2 AND stock >= $1
		`, r.line.Quantity, r.av.Variant.ID)
		if err != nil {
			log.Error("failed to reserve stock", zap.Int64("variant_id", r.av.Variant.ID), zap.Error(err))
			return fmt.Errorf("reserve stock: %w", err)
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("reserve stock rows affected: %w", err)
		}
		if affected == 0 {
			log.Warn("insufficient stock",
				zap.Int64("product_id", r.line.ProductID),
				zap.Int("quantity", r.line.Quantity),
				zap.Int("available", r.av.Stock()),
			)
			return insufficient(r.av)
		}
	}

	return nil
}

// Restore returns stock for every line, in the same variant order as
// Reserve. A line whose variant can no longer be resolved is logged and
// skipped.
func (l *ledger) Restore(ctx context.Context, q db.Querier, lines ...Line) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "inventory"),
		zap.String("method", "Restore"),
	)

	resolved := make([]resolvedLine, 0, len(lines))
	for _, line := range lines {
		av, err := l.Available(ctx, q, line)
		if err != nil {
			if errors.Is(err, ErrVariantNotFound) {
				log.Warn("variant not found, stock not restored",
					zap.Int64("product_id", line.ProductID),
					zap.String("size", deref(line.Size)),
					zap.Int("quantity", line.Quantity),
				)
				continue
			}
			return err
		}
		resolved = append(resolved, resolvedLine{line: line, av: av})
	}
	sortByVariant(resolved)

	for _, r := range resolved {
		if _, err := q.ExecContext(ctx, `
			UPDATE product_variants
			SET stock = stock + $1
			WHERE id = $2
		`, r.line.Quantity, r.av.Variant.ID); err != nil {
			log.Error("failed to restore stock", zap.Int64("variant_id", r.av.Variant.ID), zap.Error(err))
			return fmt.Errorf("restore stock: %w", err)
		}
		log.Info("stock restored", zap.Int64("variant_id", r.av.Variant.ID), zap.Int("quantity", r.line.Quantity))
	}
	return nil
}

type resolvedLine struct {
	line Line
	av   Availability
}

func sortByVariant(lines []resolvedLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].av.Variant.ID < lines[j].av.Variant.ID
	})
}

func insufficient(av Availability) error {
	return ErrInsufficientStock.
		WithMessage("Insufficient stock for product %s. Only %d items available", av.Product.Name, av.Stock()).
		WithDetails(map[string]any{
			"productId": av.Product.ID,
			"available": av.Stock(),
		})
}

// CheckQuantity reports INSUFFICIENT_STOCK when quantity exceeds what av
// currently holds, without mutating anything.
func CheckQuantity(av Availability, quantity int) error {
	if quantity > av.Stock() {
		return insufficient(av)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
