package coupon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const couponColumns = `id, code, name, discount_type, discount_value, min_order_amount,
		max_discount, start_date, end_date, usage_limit, usage_count, is_active`

type Repository interface {
	// FindValidByCode matches code case-insensitively and returns the coupon
	// only if it is redeemable at now; otherwise (nil, nil).
	FindValidByCode(ctx context.Context, q db.Querier, code string, now time.Time) (*Coupon, error)
	// IncrementUsage bumps usage_count unless the usage cap has been reached
	// in the meantime. It reports whether a row was updated.
	IncrementUsage(ctx context.Context, q db.Querier, id int64) (bool, error)
	ListValid(ctx context.Context, q db.Querier, now time.Time, limit, offset int) ([]*Coupon, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) FindValidByCode(ctx context.Context, q db.Querier, code string, now time.Time) (*Coupon, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE UPPER(code) = UPPER($1)
	`, strings.TrimSpace(code))

	c, err := scanCoupon(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.FromCtx(ctx).Error("failed to find coupon",
			zap.String("layer", "repository"),
			zap.String("method", "FindValidByCode"),
			zap.Error(err),
		)
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	if !c.IsValid(now) {
		return nil, nil
	}
	return c, nil
}

func (r *repository) IncrementUsage(ctx context.Context, q db.Querier, id int64) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE coupons
		SET usage_count = usage_count + 1
		WHERE id = $1
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
	`, id)
	if err != nil {
		return false, fmt.Errorf("increment coupon usage: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("increment coupon usage rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *repository) ListValid(ctx context.Context, q db.Querier, now time.Time, limit, offset int) ([]*Coupon, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+couponColumns+`
		FROM coupons
		WHERE is_active = TRUE
		  AND start_date <= $1 AND end_date >= $1
		  AND (usage_limit IS NULL OR usage_count < usage_limit)
		ORDER BY end_date ASC, id ASC
		LIMIT $2 OFFSET $3
	`, now, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var out []*Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupons: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCoupon(s scanner) (*Coupon, error) {
	var (
		c          Coupon
		minOrder   decimal.NullDecimal
		maxDisc    decimal.NullDecimal
		usageLimit sql.NullInt64
	)

	if err := s.Scan(
		&c.ID, &c.Code, &c.Name, &c.DiscountType, &c.DiscountValue, &minOrder,
		&maxDisc, &c.StartDate, &c.EndDate, &usageLimit, &c.UsageCount, &c.IsActive,
	); err != nil {
		return nil, err
	}

	if minOrder.Valid {
		c.MinOrderAmount = &minOrder.Decimal
	}
	if maxDisc.Valid {
		c.MaxDiscount = &maxDisc.Decimal
	}
	if usageLimit.Valid {
		n := int(usageLimit.Int64)
		c.UsageLimit = &n
	}
	return &c, nil
}
