package cart

import (
	"context"

	"storefront-be/internal/auth"
	"storefront-be/internal/db"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

type AddItemInput struct {
	ProductID int64
	Quantity  int
	Size      *string
	Color     *string
}

// Service defines the business logic for carts.
type Service interface {
	GetCart(ctx context.Context, actor auth.Actor) (*View, error)
	AddItem(ctx context.Context, actor auth.Actor, in AddItemInput) (*View, error)
	UpdateItem(ctx context.Context, actor auth.Actor, itemID int64, quantity int) (*View, error)
	RemoveItem(ctx context.Context, actor auth.Actor, itemID int64) (*View, error)
	Clear(ctx context.Context, actor auth.Actor) error
}

type service struct {
	tx       db.TxRunner
	repo     Repository
	products product.Repository
	ledger   inventory.Ledger
}

func NewService(tx db.TxRunner, repo Repository, products product.Repository, ledger inventory.Ledger) Service {
	return &service{tx: tx, repo: repo, products: products, ledger: ledger}
}

// GetCart returns the user's cart, creating it on first access. Lines whose
// sized variant (or product) no longer exists are deleted before the cart is
// returned.
func (s *service) GetCart(ctx context.Context, actor auth.Actor) (*View, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "GetCart"),
	)

	var view View
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		c, err := s.repo.GetOrCreate(ctx, q, actor.UserID)
		if err != nil {
			return err
		}

		products, err := s.products.GetByIDs(ctx, q, c.ProductIDs())
		if err != nil {
			return err
		}

		pruned := *c
		var stale []int64
		for _, it := range c.Items {
			if isStale(it, products) {
				log.Warn("removing invalid cart item",
					zap.Int64("item_id", it.ID),
					zap.Int64("product_id", it.ProductID),
				)
				pruned, _ = pruned.RemoveItem(it.ID)
				stale = append(stale, it.ID)
			}
		}
		if err := s.repo.DeleteItems(ctx, q, c.ID, stale); err != nil {
			return err
		}

		view = MapCartToView(pruned, products)
		return nil
	})
	if err != nil {
		log.Error("failed to get cart", zap.Error(err))
		return nil, err
	}

	return &view, nil
}

func isStale(it Item, products map[int64]*product.Product) bool {
	p, ok := products[it.ProductID]
	if !ok {
		return true
	}
	if it.Size == nil || *it.Size == "" {
		return false
	}
	_, ok = product.ResolveVariant(p.Variants, it.Size, it.Color)
	return !ok
}

func (s *service) AddItem(ctx context.Context, actor auth.Actor, in AddItemInput) (*View, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.Int64("product_id", in.ProductID),
	)

	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		c, err := s.repo.GetOrCreate(ctx, q, actor.UserID)
		if err != nil {
			return err
		}

		av, err := s.ledger.Available(ctx, q, inventory.Line{
			ProductID: in.ProductID,
			Size:      in.Size,
			Color:     in.Color,
			Quantity:  in.Quantity,
		})
		if err != nil {
			return err
		}

		_, item := c.AddItem(in.ProductID, in.Quantity, in.Size, in.Color)
		if err := inventory.CheckQuantity(av, item.Quantity); err != nil {
			return err
		}

		_, err = s.repo.SaveItem(ctx, q, c.ID, item)
		return err
	})
	if err != nil {
		log.Warn("failed to add cart item", zap.Error(err))
		return nil, err
	}

	log.Info("cart item added", zap.Int("quantity", in.Quantity))
	return s.GetCart(ctx, actor)
}

func (s *service) UpdateItem(ctx context.Context, actor auth.Actor, itemID int64, quantity int) (*View, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		c, err := s.repo.GetOrCreate(ctx, q, actor.UserID)
		if err != nil {
			return err
		}

		_, item, ok := c.UpdateQuantity(itemID, quantity)
		if !ok {
			return ErrCartItemNotFound
		}

		av, err := s.ledger.Available(ctx, q, inventory.Line{
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  quantity,
		})
		if err != nil {
			return err
		}
		if err := inventory.CheckQuantity(av, quantity); err != nil {
			return err
		}

		_, err = s.repo.SaveItem(ctx, q, c.ID, item)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(ctx, actor)
}

func (s *service) RemoveItem(ctx context.Context, actor auth.Actor, itemID int64) (*View, error) {
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		c, err := s.repo.GetOrCreate(ctx, q, actor.UserID)
		if err != nil {
			return err
		}
		if _, ok := c.RemoveItem(itemID); !ok {
			return ErrCartItemNotFound
		}
		return s.repo.DeleteItems(ctx, q, c.ID, []int64{itemID})
	})
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("cart item removed", zap.Int64("item_id", itemID))
	return s.GetCart(ctx, actor)
}

func (s *service) Clear(ctx context.Context, actor auth.Actor) error {
	return s.tx.WithTx(ctx, func(q db.Querier) error {
		c, err := s.repo.FindByUserID(ctx, q, actor.UserID)
		if err != nil || c == nil {
			return err
		}
		return s.repo.Clear(ctx, q, c.ID)
	})
}
