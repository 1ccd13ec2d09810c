package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// FindByUserID returns the user's cart with its items, or nil when the
	// user has never had one.
	FindByUserID(ctx context.Context, q db.Querier, userID int64) (*Cart, error)
	// FindByUserIDForUpdate is FindByUserID holding the cart row lock until
	// q's transaction ends. Items are read after the lock is granted.
	FindByUserIDForUpdate(ctx context.Context, q db.Querier, userID int64) (*Cart, error)
	GetOrCreate(ctx context.Context, q db.Querier, userID int64) (*Cart, error)
	SaveItem(ctx context.Context, q db.Querier, cartID int64, item Item) (Item, error)
	DeleteItems(ctx context.Context, q db.Querier, cartID int64, itemIDs []int64) error
	Clear(ctx context.Context, q db.Querier, cartID int64) error
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) FindByUserID(ctx context.Context, q db.Querier, userID int64) (*Cart, error) {
	return r.findByUserID(ctx, q, `SELECT id FROM carts WHERE user_id = $1`, userID)
}

func (r *repository) FindByUserIDForUpdate(ctx context.Context, q db.Querier, userID int64) (*Cart, error) {
	return r.findByUserID(ctx, q, `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *repository) findByUserID(ctx context.Context, q db.Querier, query string, userID int64) (*Cart, error) {
	c := Cart{UserID: userID}
	err := q.QueryRowContext(ctx, query, userID).Scan(&c.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}

	items, err := r.listItems(ctx, q, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (r *repository) GetOrCreate(ctx context.Context, q db.Querier, userID int64) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrCreate"),
	)

	c := Cart{UserID: userID}
	err := q.QueryRowContext(ctx, `
		INSERT INTO carts (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = carts.updated_at
		RETURNING id
	`, userID).Scan(&c.ID)
	if err != nil {
		log.Error("failed to upsert cart", zap.Error(err))
		return nil, fmt.Errorf("get or create cart: %w", err)
	}

	items, err := r.listItems(ctx, q, c.ID)
	if err != nil {
		log.Error("failed to list cart items", zap.Error(err))
		return nil, err
	}
	c.Items = items
	return &c, nil
}

func (r *repository) listItems(ctx context.Context, q db.Querier, cartID int64) ([]Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, quantity, size, color
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.Size, &it.Color); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

// SaveItem inserts the line when it has no ID yet and updates its quantity
// otherwise.
func (r *repository) SaveItem(ctx context.Context, q db.Querier, cartID int64, item Item) (Item, error) {
	if item.ID == 0 {
		err := q.QueryRowContext(ctx, `
			INSERT INTO cart_items (cart_id, product_id, quantity, size, color)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, cartID, item.ProductID, item.Quantity, item.Size, item.Color).Scan(&item.ID)
		if err != nil {
			return Item{}, fmt.Errorf("insert cart item: %w", err)
		}
		return item, nil
	}

	res, err := q.ExecContext(ctx, `
		UPDATE cart_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND cart_id = $3
	`, item.Quantity, item.ID, cartID)
	if err != nil {
		return Item{}, fmt.Errorf("update cart item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Item{}, fmt.Errorf("update cart item rows affected: %w", err)
	}
	if affected == 0 {
		return Item{}, ErrCartItemNotFound
	}
	return item, nil
}

func (r *repository) DeleteItems(ctx context.Context, q db.Querier, cartID int64, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	if _, err := q.ExecContext(ctx, `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND id = ANY($2)
	`, cartID, pq.Array(itemIDs)); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	return nil
}

// Clear removes every line but keeps the cart row.
func (r *repository) Clear(ctx context.Context, q db.Querier, cartID int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
