package coupon

import (
	"context"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	// Validate resolves code into a redeemable coupon for amount.
	Validate(ctx context.Context, q db.Querier, code string, now time.Time, amount decimal.Decimal) (*Coupon, error)
	IncrementUsage(ctx context.Context, q db.Querier, id int64) error
	Preview(ctx context.Context, code string, amount decimal.Decimal) (*Preview, error)
	Verify(ctx context.Context, code string) (*View, error)
	ListValid(ctx context.Context, page, size int) ([]View, error)
}

type service struct {
	repo Repository
	db   db.Querier
	now  func() time.Time
}

func NewService(repo Repository, q db.Querier) Service {
	return &service{repo: repo, db: q, now: time.Now}
}

func (s *service) Validate(ctx context.Context, q db.Querier, code string, now time.Time, amount decimal.Decimal) (*Coupon, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ValidateCoupon"),
		zap.String("code", code),
	)

	c, err := s.repo.FindValidByCode(ctx, q, code, now)
	if err != nil {
		return nil, err
	}
	if c == nil {
		log.Info("coupon rejected")
		return nil, ErrInvalidCoupon
	}

	if c.MinOrderAmount != nil && amount.LessThan(*c.MinOrderAmount) {
		log.Info("minimum order not met", zap.String("min", c.MinOrderAmount.StringFixed(2)))
		return nil, minOrderNotMet(*c.MinOrderAmount)
	}

	return c, nil
}

func (s *service) IncrementUsage(ctx context.Context, q db.Querier, id int64) error {
	ok, err := s.repo.IncrementUsage(ctx, q, id)
	if err != nil {
		return err
	}
	if !ok {
		logger.FromCtx(ctx).Warn("coupon usage limit reached concurrently", zap.Int64("coupon_id", id))
		return ErrInvalidCoupon
	}
	return nil
}

// Preview evaluates code against amount without redeeming it. A coupon that
// exists but misses its minimum order is reported as invalid with a message
// rather than an error.
func (s *service) Preview(ctx context.Context, code string, amount decimal.Decimal) (*Preview, error) {
	c, err := s.repo.FindValidByCode(ctx, s.db, code, s.now())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrInvalidCoupon
	}

	if c.MinOrderAmount != nil && amount.LessThan(*c.MinOrderAmount) {
		return &Preview{
			Code:           c.Code,
			Name:           c.Name,
			Valid:          false,
			Message:        minOrderNotMet(*c.MinOrderAmount).Message,
			OriginalAmount: amount,
			DiscountAmount: decimal.Zero,
			FinalAmount:    amount,
		}, nil
	}

	discount := ComputeDiscount(c, amount)
	final := amount.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return &Preview{
		Code:           c.Code,
		Name:           c.Name,
		Valid:          true,
		Message:        "Coupon applied successfully",
		OriginalAmount: amount,
		DiscountAmount: discount,
		FinalAmount:    final,
	}, nil
}

// Verify reports whether code is redeemable right now, ignoring any minimum
// order amount.
func (s *service) Verify(ctx context.Context, code string) (*View, error) {
	c, err := s.repo.FindValidByCode(ctx, s.db, code, s.now())
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrInvalidCoupon
	}

	view := ToView(c)
	return &view, nil
}

func (s *service) ListValid(ctx context.Context, page, size int) ([]View, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	} else if size > 100 {
		size = 100
	}

	coupons, err := s.repo.ListValid(ctx, s.db, s.now(), size, (page-1)*size)
	if err != nil {
		return nil, err
	}

	out := make([]View, 0, len(coupons))
	for _, c := range coupons {
		out = append(out, ToView(c))
	}
	return out, nil
}

func minOrderNotMet(min decimal.Decimal) *apperr.Error {
	return ErrMinOrderNotMet.
		WithMessage("Minimum order amount is %s VND", min.StringFixed(2)).
		WithDetails(map[string]any{"minOrderAmount": min.StringFixed(2)})
}
