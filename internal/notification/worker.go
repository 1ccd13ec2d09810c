package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"

	"go.uber.org/zap"
)

type WorkerConfig struct {
	MaxAttempts int
	Backoff     time.Duration
	PollTimeout time.Duration
	Concurrency int
}

// Worker drains a Queue and delivers each message through a Sender, retrying
// with exponential backoff before dead-lettering it.
type Worker struct {
	queue   Queue
	sender  Sender
	cfg     WorkerConfig
	metrics *metrics.Registry
}

func NewWorker(queue Queue, sender Sender, cfg WorkerConfig, m *metrics.Registry) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if m == nil {
		m = metrics.NewRegistry()
	}
	return &Worker{queue: queue, sender: sender, cfg: cfg, metrics: m}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()
}

func (w *Worker) loop(ctx context.Context, id int) {
	log := logger.L().With(zap.String("layer", "worker"), zap.Int("worker_id", id))
	log.Info("notification worker started")

	for {
		if ctx.Err() != nil {
			log.Info("notification worker stopped")
			return
		}

		msg, err := w.queue.Dequeue(ctx, w.cfg.PollTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			log.Error("failed to dequeue notification", zap.Error(err))
			_ = sleep(ctx, w.cfg.Backoff)
			continue
		}
		if msg == nil {
			continue
		}

		w.Handle(ctx, *msg)
	}
}

// Handle delivers one message. It never returns an error: after MaxAttempts
// failures the message goes to the dead-letter list.
func (w *Worker) Handle(ctx context.Context, msg Message) {
	log := logger.L().With(
		zap.String("layer", "worker"),
		zap.String("message_id", msg.ID),
		zap.String("kind", string(msg.Kind)),
		zap.String("order_number", msg.Order.OrderNumber),
	)

	backoff := w.cfg.Backoff
	for attempt := msg.Attempts + 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		msg.Attempts = attempt

		err := w.sender.Send(ctx, msg)
		if err == nil {
			w.metrics.NotificationsSent.Inc()
			log.Info("notification delivered", zap.Int("attempt", attempt))
			return
		}

		msg.LastError = err.Error()
		log.Warn("notification delivery failed", zap.Int("attempt", attempt), zap.Error(err))

		if errors.Is(err, ErrNoRecipient) || attempt == w.cfg.MaxAttempts {
			break
		}

		w.metrics.NotificationsRetried.Inc()
		if err := sleep(ctx, backoff); err != nil {
			// shutting down; keep the message rather than lose it
			w.deadLetter(ctx, log, msg)
			return
		}
		backoff *= 2
	}

	w.deadLetter(ctx, log, msg)
}

func (w *Worker) deadLetter(ctx context.Context, log *zap.Logger, msg Message) {
	w.metrics.NotificationsDead.Inc()
	if err := w.queue.DeadLetter(context.WithoutCancel(ctx), msg); err != nil {
		log.Error("failed to dead-letter notification", zap.Error(err))
		return
	}
	log.Error("notification dead-lettered", zap.Int("attempts", msg.Attempts), zap.String("last_error", msg.LastError))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
