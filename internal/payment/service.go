package payment

import (
	"context"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"go.uber.org/zap"
)

// OrderUpdater applies a payment outcome to an order.
type OrderUpdater interface {
	UpdateOrderAfterPayment(ctx context.Context, orderID int64, success bool) error
}

type Processor interface {
	// Process records o and applies it to its order. duplicate is true when
	// the same delivery was already processed.
	Process(ctx context.Context, o *Outcome) (duplicate bool, err error)
}

type processor struct {
	repo    Repository
	db      db.Querier
	orders  OrderUpdater
	metrics *metrics.Registry
}

func NewProcessor(repo Repository, q db.Querier, orders OrderUpdater, m *metrics.Registry) Processor {
	if m == nil {
		m = metrics.NewRegistry()
	}
	return &processor{repo: repo, db: q, orders: orders, metrics: m}
}

func (p *processor) Process(ctx context.Context, o *Outcome) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ProcessPayment"),
		zap.String("provider", string(o.Provider)),
		zap.String("event_id", o.EventID),
		zap.Int64("order_id", o.OrderID),
		zap.Bool("success", o.Success),
	)

	p.metrics.PaymentCallbacks.Inc()

	callbackID, duplicate, err := p.repo.SaveCallback(ctx, p.db, o, true)
	if err != nil {
		log.Error("failed to store payment callback", zap.Error(err))
		return false, err
	}
	if duplicate {
		p.metrics.PaymentReplays.Inc()
		log.Info("duplicate payment callback ignored")
		return true, nil
	}

	if err := p.orders.UpdateOrderAfterPayment(ctx, o.OrderID, o.Success); err != nil {
		if markErr := p.repo.MarkFailed(ctx, p.db, callbackID, err.Error()); markErr != nil {
			log.Error("failed to mark callback failed", zap.Error(markErr))
		}
		return false, err
	}

	if err := p.repo.MarkProcessed(ctx, p.db, callbackID); err != nil {
		// The order is already updated; a redelivery is a no-op on it.
		log.Warn("failed to mark callback processed", zap.Error(err))
	}

	log.Info("payment callback processed")
	return false, nil
}
