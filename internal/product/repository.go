package product

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
	// GetByID loads a live product with its variants ordered by id.
	GetByID(ctx context.Context, q db.Querier, id int64) (*Product, error)
	// GetByIDs loads several products at once; missing or deleted ids are
	// simply absent from the result.
	GetByIDs(ctx context.Context, q db.Querier, ids []int64) (map[int64]*Product, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) GetByID(ctx context.Context, q db.Querier, id int64) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByID"),
		zap.Int64("product_id", id),
	)

	var p Product
	err := q.QueryRowContext(ctx, `
		SELECT id, name, price, image_url
		FROM products
		WHERE id = $1 AND deleted_at IS NULL
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.ImageURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		log.Error("failed to load product", zap.Error(err))
		return nil, fmt.Errorf("get product: %w", err)
	}

	variants, err := r.listVariants(ctx, q, []int64{id})
	if err != nil {
		log.Error("failed to load variants", zap.Error(err))
		return nil, err
	}
	p.Variants = variants[id]

	return &p, nil
}

func (r *repository) GetByIDs(ctx context.Context, q db.Querier, ids []int64) (map[int64]*Product, error) {
	out := make(map[int64]*Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByIDs"),
	)

	rows, err := q.QueryContext(ctx, `
		SELECT id, name, price, image_url
		FROM products
		WHERE id = ANY($1) AND deleted_at IS NULL
	`, pq.Array(ids))
	if err != nil {
		log.Error("failed to query products", zap.Error(err))
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	variants, err := r.listVariants(ctx, q, ids)
	if err != nil {
		log.Error("failed to load variants", zap.Error(err))
		return nil, err
	}
	for id, p := range out {
		p.Variants = variants[id]
	}

	return out, nil
}

func (r *repository) listVariants(ctx context.Context, q db.Querier, productIDs []int64) (map[int64][]Variant, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, product_id, size, color, stock
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, id
	`, pq.Array(productIDs))
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]Variant)
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.Stock); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}

	return out, nil
}
