package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront-be/internal/apperr"
	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/coupon"
	"storefront-be/internal/db"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/notification"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxCheckoutAttempts = 3
	defaultPageSize     = 20
	maxPageSize         = 100
)

type Service interface {
	Checkout(ctx context.Context, actor auth.Actor, in CheckoutInput) (*Order, error)
	Cancel(ctx context.Context, actor auth.Actor, orderID int64, reason string) (*Order, error)
	UpdateStatus(ctx context.Context, actor auth.Actor, orderID int64, status Status, note *string) (*Order, error)
	// UpdateOrderAfterPayment applies a gateway outcome. Outcomes that do not
	// apply to the order's current state are ignored.
	UpdateOrderAfterPayment(ctx context.Context, orderID int64, success bool) error
	GetOrder(ctx context.Context, actor auth.Actor, orderID int64) (*Order, error)
	ListOrders(ctx context.Context, actor auth.Actor, filter ListFilter) (*ListResult, error)
}

type Dependencies struct {
	Tx          db.TxRunner
	Orders      Repository
	Carts       cart.Repository
	Coupons     coupon.Service
	Ledger      inventory.Ledger
	Numbers     NumberGenerator
	Publisher   notification.Publisher
	Metrics     *metrics.Registry
	ShippingFee decimal.Decimal
}

type service struct {
	tx          db.TxRunner
	repo        Repository
	carts       cart.Repository
	coupons     coupon.Service
	ledger      inventory.Ledger
	assembler   *Assembler
	numbers     NumberGenerator
	publisher   notification.Publisher
	metrics     *metrics.Registry
	shippingFee decimal.Decimal
	now         func() time.Time
}

func NewService(d Dependencies) Service {
	m := d.Metrics
	if m == nil {
		m = metrics.NewRegistry()
	}
	return &service{
		tx:          d.Tx,
		repo:        d.Orders,
		carts:       d.Carts,
		coupons:     d.Coupons,
		ledger:      d.Ledger,
		assembler:   NewAssembler(d.Ledger),
		numbers:     d.Numbers,
		publisher:   d.Publisher,
		metrics:     m,
		shippingFee: d.ShippingFee,
		now:         time.Now,
	}
}

// Checkout converts the actor's cart into a PENDING order in one
// transaction: assemble lines, redeem the coupon, number the order, reserve
// stock and clear the cart. The confirmation notification is queued only
// after commit.
func (s *service) Checkout(ctx context.Context, actor auth.Actor, in CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
		zap.Int64("user_id", actor.UserID),
	)

	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod.WithMessage("Invalid payment method: %s", in.PaymentMethod)
	}

	timer := metrics.StartTimer()

	var (
		created *Order
		err     error
	)
	for attempt := 1; attempt <= maxCheckoutAttempts; attempt++ {
		created, err = s.checkoutOnce(ctx, actor, in)
		if !errors.Is(err, errOrderNumberTaken) {
			break
		}
		s.metrics.CheckoutRetries.Inc()
		log.Warn("order number collision, retrying", zap.Int("attempt", attempt))
	}
	if err != nil {
		if errors.Is(err, errOrderNumberTaken) {
			log.Error("order number collisions exhausted retries")
			return nil, apperr.ErrInternal
		}
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			s.metrics.CheckoutRejected.Inc()
			log.Info("checkout rejected", zap.String("code", appErr.Code), zap.String("reason", appErr.Message))
		} else {
			log.Error("checkout failed", zap.Error(err))
		}
		return nil, err
	}

	s.metrics.OrdersPlaced.Inc()
	s.metrics.ObserveCheckout(timer.Duration())
	log.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.String("total", created.TotalAmount.StringFixed(2)),
	)

	s.notify(ctx, notification.KindOrderConfirmation, created)
	return created, nil
}

func (s *service) checkoutOnce(ctx context.Context, actor auth.Actor, in CheckoutInput) (*Order, error) {
	var created Order

	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		now := s.now()

		// A second checkout of the same cart waits here and then sees it
		// cleared.
		c, err := s.carts.FindByUserIDForUpdate(ctx, q, actor.UserID)
		if err != nil {
			return err
		}
		if c == nil || c.IsEmpty() {
			return ErrCartEmpty
		}

		items, subtotal, err := s.assembler.Assemble(ctx, q, c.Items)
		if err != nil {
			return err
		}

		discount := decimal.Zero
		var couponCode *string
		if in.CouponCode != nil && strings.TrimSpace(*in.CouponCode) != "" {
			cp, err := s.coupons.Validate(ctx, q, *in.CouponCode, now, subtotal)
			if err != nil {
				return err
			}
			discount = coupon.ComputeDiscount(cp, subtotal)
			if err := s.coupons.IncrementUsage(ctx, q, cp.ID); err != nil {
				return err
			}
			code := cp.Code
			couponCode = &code
		}

		number, err := s.numbers.Next(ctx, q, now)
		if err != nil {
			return err
		}

		o := Order{
			OrderNumber:    number,
			UserID:         actor.UserID,
			CustomerEmail:  actor.Email,
			Status:         StatusPending,
			Subtotal:       decimal.Zero,
			ShippingFee:    s.shippingFee,
			DiscountAmount: discount,
			CouponCode:     couponCode,
			PaymentMethod:  in.PaymentMethod,
			PaymentStatus:  PaymentPending,
			Shipping:       in.Shipping,
			Note:           in.Note,
		}
		for _, it := range items {
			o = o.AddItem(it)
		}
		o.TotalAmount = ComputeTotal(subtotal, s.shippingFee, discount)

		if err := s.repo.Insert(ctx, q, &o); err != nil {
			return err
		}

		if err := s.ledger.Reserve(ctx, q, itemLines(o.Items)...); err != nil {
			return err
		}

		if err := s.carts.Clear(ctx, q, c.ID); err != nil {
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *service) Cancel(ctx context.Context, actor auth.Actor, orderID int64, reason string) (*Order, error) {
	return s.transition(ctx, "Cancel", orderID, func(o Order, now time.Time) (Transition, error) {
		return ApplyUserCancel(o, actor.UserID, reason, now)
	})
}

func (s *service) UpdateStatus(ctx context.Context, actor auth.Actor, orderID int64, status Status, note *string) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.ErrForbidden
	}
	if _, ok := ParseStatus(string(status)); !ok {
		return nil, ErrInvalidStatus.WithMessage("Invalid order status: %s", status)
	}

	return s.transition(ctx, "UpdateStatus", orderID, func(o Order, now time.Time) (Transition, error) {
		return ApplyAdminStatus(o, status, note, now)
	})
}

// transition runs one status change under a row lock, restoring stock when
// the change requires it, and notifies after commit.
func (s *service) transition(
	ctx context.Context,
	method string,
	orderID int64,
	apply func(o Order, now time.Time) (Transition, error),
) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", method),
		zap.Int64("order_id", orderID),
	)

	var updated Order
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		o, err := s.repo.GetByIDForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}

		t, err := apply(*o, s.now())
		if err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(ctx, q, &t.Order); err != nil {
			return err
		}
		if t.Restock {
			if err := s.restock(ctx, q, t.Order.Items); err != nil {
				return err
			}
		}

		log.Info("order status changed",
			zap.String("from", string(o.Status)),
			zap.String("to", string(t.Order.Status)),
			zap.Bool("restocked", t.Restock),
		)
		updated = t.Order
		return nil
	})
	if err != nil {
		log.Warn("status change rejected", zap.Error(err))
		return nil, err
	}

	s.metrics.StatusTransitions.Inc()
	s.notify(ctx, notification.KindOrderStatusUpdate, &updated)
	return &updated, nil
}

func (s *service) UpdateOrderAfterPayment(ctx context.Context, orderID int64, success bool) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrderAfterPayment"),
		zap.Int64("order_id", orderID),
		zap.Bool("success", success),
	)

	var (
		updated Order
		changed bool
	)
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		o, err := s.repo.GetByIDForUpdate(ctx, q, orderID)
		if err != nil {
			return err
		}

		var t Transition
		t, changed = ApplyPaymentResult(*o, success, s.now())
		if !changed {
			log.Info("payment outcome does not apply, ignoring",
				zap.String("status", string(o.Status)),
				zap.String("payment_status", string(o.PaymentStatus)),
			)
			return nil
		}

		if err := s.repo.UpdateStatus(ctx, q, &t.Order); err != nil {
			return err
		}
		if t.Restock {
			if err := s.restock(ctx, q, t.Order.Items); err != nil {
				return err
			}
		}
		updated = t.Order
		return nil
	})
	if err != nil {
		log.Error("failed to apply payment outcome", zap.Error(err))
		return err
	}

	if changed {
		s.metrics.StatusTransitions.Inc()
		log.Info("payment outcome applied", zap.String("status", string(updated.Status)))
		s.notify(ctx, notification.KindOrderStatusUpdate, &updated)
	}
	return nil
}

func (s *service) restock(ctx context.Context, q db.Querier, items []Item) error {
	return s.ledger.Restore(ctx, q, itemLines(items)...)
}

func (s *service) GetOrder(ctx context.Context, actor auth.Actor, orderID int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, s.tx.Querier(), orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && o.UserID != actor.UserID {
		return nil, ErrOrderForbidden
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, actor auth.Actor, filter ListFilter) (*ListResult, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Size <= 0 {
		filter.Size = defaultPageSize
	} else if filter.Size > maxPageSize {
		filter.Size = maxPageSize
	}

	var userID *int64
	if !actor.IsAdmin() {
		id := actor.UserID
		userID = &id
	}

	orders, total, err := s.repo.List(ctx, s.tx.Querier(), userID, filter)
	if err != nil {
		return nil, err
	}

	pages := (total + filter.Size - 1) / filter.Size
	return &ListResult{
		Orders:     orders,
		Page:       filter.Page,
		Size:       filter.Size,
		TotalItems: total,
		TotalPages: pages,
	}, nil
}

// notify queues a notification. Failures are logged and never reach the
// caller: the order change has already been committed.
func (s *service) notify(ctx context.Context, kind notification.Kind, o *Order) {
	if s.publisher == nil {
		return
	}

	msg := notification.NewMessage(kind, o.CustomerEmail, ToSnapshot(o))
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.metrics.NotificationsDropped.Inc()
		logger.FromCtx(ctx).Error("failed to enqueue notification",
			zap.String("kind", string(kind)),
			zap.String("order_number", o.OrderNumber),
			zap.Error(err),
		)
	}
}
