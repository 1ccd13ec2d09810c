package main

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"storefront-be/internal/config"
	"storefront-be/internal/metrics"
	"storefront-be/internal/notification"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort:     "8080",
		AppEnv:      "test",
		JWTSecret:   "secret",
		CORSOrigin:  "http://localhost:3000",
		ShippingFee: decimal.NewFromInt(30000),
		Location:    time.UTC,
	}
}

func TestNewServer(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	router := newServer(testConfig(), db, notification.NewMemoryQueue(4), metrics.NewRegistry())
	require.NotNil(t, router)

	t.Run("Health Check", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	})

	t.Run("Orders require auth", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Unconfigured gateways", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/payment/stripe-webhook", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Callbacks skip session auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/payment/vnpay-callback", nil)
		req.Header.Set("Authorization", "Bearer stale")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Dashboard requires auth", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard/overview", nil))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestNewQueue(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		q, closeFn, err := newQueue(context.Background(), testConfig())
		require.NoError(t, err)
		defer closeFn()

		_, ok := q.(*notification.MemoryQueue)
		assert.True(t, ok)
	})

	t.Run("Redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.RedisAddr = mr.Addr()

		q, closeFn, err := newQueue(context.Background(), cfg)
		require.NoError(t, err)
		defer closeFn()

		_, ok := q.(*notification.RedisQueue)
		assert.True(t, ok)
	})

	t.Run("RedisUnreachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := testConfig()
		cfg.RedisAddr = mr.Addr()
		mr.Close()

		_, _, err := newQueue(context.Background(), cfg)
		assert.Error(t, err)
	})
}

func TestNewSender(t *testing.T) {
	cfg := testConfig()
	_, ok := newSender(cfg).(notification.LogSender)
	assert.True(t, ok)

	cfg.SMTPHost = "smtp.example.com"
	_, ok = newSender(cfg).(*notification.SMTPSender)
	assert.True(t, ok)
}

// blockingQueue holds Dequeue until the worker context ends, then takes a
// moment to return.
type blockingQueue struct {
	returned atomic.Bool
}

func (q *blockingQueue) Publish(context.Context, notification.Message) error { return nil }

func (q *blockingQueue) Dequeue(ctx context.Context, _ time.Duration) (*notification.Message, error) {
	<-ctx.Done()
	time.Sleep(20 * time.Millisecond)
	q.returned.Store(true)
	return nil, ctx.Err()
}

func (q *blockingQueue) DeadLetter(context.Context, notification.Message) error { return nil }

func TestStartWorker(t *testing.T) {
	q := &blockingQueue{}
	w := notification.NewWorker(q, notification.LogSender{}, notification.WorkerConfig{Concurrency: 2}, nil)

	stop := startWorker(w)
	assert.False(t, q.returned.Load())

	stop()
	assert.True(t, q.returned.Load(), "stop must wait for the worker to return")

	stop()
}

func TestRun(t *testing.T) {
	origInitDB := initDBFunc
	defer func() { initDBFunc = origInitDB }()
	initDBFunc = func(cfg *config.Config) *sql.DB {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		return db
	}

	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()
	startServerFunc = func(srv *http.Server) error {
		assert.Equal(t, ":9090", srv.Addr)
		return nil
	}

	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("DB_NAME", "db")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("SMTP_HOST", "")

	assert.NoError(t, run())
}
