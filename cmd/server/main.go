package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"storefront-be/internal/cart"
	"storefront-be/internal/config"
	"storefront-be/internal/coupon"
	"storefront-be/internal/db"
	"storefront-be/internal/handler"
	"storefront-be/internal/inventory"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/notification"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"
	"storefront-be/internal/payment/webhook"
	"storefront-be/internal/product"

	"go.uber.org/zap"
)

const (
	memoryQueueSize = 1024
	shutdownTimeout = 10 * time.Second
)

// Overridable in tests.
var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewRegistry()

	queue, closeQueue, err := newQueue(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeQueue()

	worker := notification.NewWorker(queue, newSender(cfg), notification.WorkerConfig{
		MaxAttempts: cfg.NotifyMaxAttempts,
		Backoff:     cfg.NotifyRetryBackoff,
	}, m)
	stopWorker := startWorker(worker)
	defer stopWorker()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, database, queue, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("🚀 storefront API listening", zap.String("addr", srv.Addr))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	stopWorker()
	logger.L().Info("notification worker stopped")
	return nil
}

// startWorker runs w until the returned stop func is called. stop waits for
// the worker to return and is safe to call more than once.
func startWorker(w *notification.Worker) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// newServer wires repositories, services and gateways into the HTTP router.
func newServer(cfg *config.Config, database *sql.DB, publisher notification.Publisher, m *metrics.Registry) http.Handler {
	tx := db.NewTxRunner(database)

	products := product.NewRepository()
	carts := cart.NewRepository()
	ledger := inventory.NewLedger(products)
	coupons := coupon.NewService(coupon.NewRepository(), database)

	orders := order.NewService(order.Dependencies{
		Tx:          tx,
		Orders:      order.NewRepository(),
		Carts:       carts,
		Coupons:     coupons,
		Ledger:      ledger,
		Numbers:     order.NewNumberGenerator(cfg.Location),
		Publisher:   publisher,
		Metrics:     m,
		ShippingFee: cfg.ShippingFee,
	})

	processor := payment.NewProcessor(payment.NewRepository(), database, orders, m)

	var vnpay webhook.VNPay
	vnpayCfg := payment.VNPayConfig{
		PayURL:     cfg.VNPayURL,
		ReturnURL:  cfg.VNPayReturnURL,
		TmnCode:    cfg.VNPayTmnCode,
		HashSecret: cfg.VNPayHashSecret,
	}
	if err := vnpayCfg.Validate(); err != nil {
		logger.L().Warn("VNPay disabled", zap.Error(err))
	} else {
		vnpay = payment.NewVNPayGateway(vnpayCfg)
	}

	var stripe payment.Gateway
	if cfg.StripeWebhookSecret != "" {
		stripe = payment.NewStripeGateway(cfg.StripeWebhookSecret)
	} else {
		logger.L().Warn("Stripe webhook disabled: STRIPE_WEBHOOK_SECRET is not set")
	}

	return handler.NewRouter(
		handler.RouterConfig{JWTSecret: cfg.JWTSecret, CORSOrigin: cfg.CORSOrigin},
		handler.Handlers{
			Cart:      handler.NewCartHandler(cart.NewService(tx, carts, products, ledger)),
			Orders:    handler.NewOrderHandler(orders),
			Admin:     handler.NewAdminHandler(orders),
			Dashboard: handler.NewDashboardHandler(order.NewAnalytics(database, cfg.Location)),
			Coupons:   handler.NewCouponHandler(coupons),
			Payments:  webhook.NewWebhookHandler(processor, orders, vnpay, stripe),
			Health:    handler.NewHealthHandler(database, m),
		},
	)
}

// newQueue returns the Redis-backed queue when REDIS_ADDR is set and a
// bounded in-memory queue otherwise.
func newQueue(ctx context.Context, cfg *config.Config) (notification.Queue, func(), error) {
	if cfg.RedisAddr == "" {
		logger.L().Warn("REDIS_ADDR not set, notifications use an in-memory queue")
		return notification.NewMemoryQueue(memoryQueueSize), func() {}, nil
	}

	client, err := notification.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.L().Warn("failed to close redis client", zap.Error(err))
		}
	}
	return notification.NewRedisQueue(client, ""), closeFn, nil
}

func newSender(cfg *config.Config) notification.Sender {
	if cfg.SMTPHost == "" {
		return notification.LogSender{}
	}
	return notification.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
}
