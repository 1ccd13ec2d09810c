package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/cart"
	"storefront-be/internal/coupon"
	"storefront-be/internal/db"
	"storefront-be/internal/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "handler-test-secret"
	testInternalKey = "internal-test-key"
)

var (
	buyer = auth.Actor{UserID: 5, Email: "buyer@example.com", Role: auth.RoleUser}
	admin = auth.Actor{UserID: 1, Email: "admin@example.com", Role: auth.RoleAdmin}
)

// --- Mocks ---

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, actor auth.Actor, in order.CheckoutInput) (*order.Order, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Cancel(ctx context.Context, actor auth.Actor, orderID int64, reason string) (*order.Order, error) {
	args := m.Called(ctx, actor, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, actor auth.Actor, orderID int64, status order.Status, note *string) (*order.Order, error) {
	args := m.Called(ctx, actor, orderID, status, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderAfterPayment(ctx context.Context, orderID int64, success bool) error {
	args := m.Called(ctx, orderID, success)
	return args.Error(0)
}

func (m *MockOrderService) GetOrder(ctx context.Context, actor auth.Actor, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, actor auth.Actor, filter order.ListFilter) (*order.ListResult, error) {
	args := m.Called(ctx, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.ListResult), args.Error(1)
}

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) GetCart(ctx context.Context, actor auth.Actor) (*cart.View, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartService) AddItem(ctx context.Context, actor auth.Actor, in cart.AddItemInput) (*cart.View, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartService) UpdateItem(ctx context.Context, actor auth.Actor, itemID int64, quantity int) (*cart.View, error) {
	args := m.Called(ctx, actor, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartService) RemoveItem(ctx context.Context, actor auth.Actor, itemID int64) (*cart.View, error) {
	args := m.Called(ctx, actor, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.View), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, actor auth.Actor) error {
	args := m.Called(ctx, actor)
	return args.Error(0)
}

type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Validate(ctx context.Context, q db.Querier, code string, now time.Time, amount decimal.Decimal) (*coupon.Coupon, error) {
	args := m.Called(ctx, q, code, now, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Coupon), args.Error(1)
}

func (m *MockCouponService) IncrementUsage(ctx context.Context, q db.Querier, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockCouponService) Preview(ctx context.Context, code string, amount decimal.Decimal) (*coupon.Preview, error) {
	args := m.Called(ctx, code, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.Preview), args.Error(1)
}

func (m *MockCouponService) Verify(ctx context.Context, code string) (*coupon.View, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*coupon.View), args.Error(1)
}

func (m *MockCouponService) ListValid(ctx context.Context, page, size int) ([]coupon.View, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]coupon.View), args.Error(1)
}

type MockAnalytics struct {
	mock.Mock
}

func (m *MockAnalytics) Overview(ctx context.Context) (*order.Overview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Overview), args.Error(1)
}

func (m *MockAnalytics) Sales(ctx context.Context, period order.Period, start, end time.Time) (*order.SalesReport, error) {
	args := m.Called(ctx, period, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.SalesReport), args.Error(1)
}

func (m *MockAnalytics) TopProducts(ctx context.Context, limit int) ([]order.TopProduct, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.TopProduct), args.Error(1)
}

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(context.Context) error {
	return p.err
}

var errDBDown = errors.New("connection refused")

// --- Helpers ---

// newTestRouter builds the full router. Requests are sent on the internal
// rate tier so the package's request volume never trips the limiter.
func newTestRouter(t *testing.T, h Handlers) http.Handler {
	t.Helper()
	t.Setenv("INTERNAL_SECRET_KEY", testInternalKey)
	return NewRouter(RouterConfig{JWTSecret: testSecret, CORSOrigin: "http://localhost:3000"}, h)
}

func do(t *testing.T, h http.Handler, method, path, body string, actor *auth.Actor) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("X-Service-Auth", testInternalKey)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor != nil {
		token, err := auth.GenerateJWT(testSecret, *actor, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, rec)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok, "expected error envelope, got %s", rec.Body.String())
	return errBody["code"].(string)
}

func strPtr(s string) *string {
	return &s
}

func sampleOrder() *order.Order {
	created := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	return &order.Order{
		ID:             42,
		OrderNumber:    "ORD-20261019-00001",
		UserID:         5,
		CustomerEmail:  "buyer@example.com",
		Status:         order.StatusPending,
		Subtotal:       decimal.NewFromInt(200000),
		ShippingFee:    decimal.NewFromInt(30000),
		DiscountAmount: decimal.NewFromInt(20000),
		CouponCode:     strPtr("SAVE10"),
		TotalAmount:    decimal.NewFromInt(210000),
		PaymentMethod:  order.PaymentCOD,
		PaymentStatus:  order.PaymentPending,
		Shipping: order.ShippingInfo{
			ReceiverName:    "Nguyen Van A",
			ReceiverPhone:   "0901234567",
			ShippingAddress: "12 Le Loi",
		},
		Items: []order.Item{{
			ID:          1,
			ProductID:   10,
			ProductName: "Basic Tee",
			Price:       decimal.NewFromInt(100000),
			Quantity:    2,
			Size:        strPtr("M"),
			Subtotal:    decimal.NewFromInt(200000),
		}},
		CreatedAt: created,
		UpdatedAt: created,
	}
}
