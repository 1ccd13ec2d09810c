package order

import (
	"context"
	"fmt"
	"time"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// revenueStatuses are the statuses whose totals count as sales.
var revenueStatuses = []string{
	string(StatusConfirmed), string(StatusProcessing), string(StatusShipping), string(StatusDelivered),
}

type Period string

const (
	PeriodDaily   Period = "DAILY"
	PeriodMonthly Period = "MONTHLY"
	PeriodYearly  Period = "YEARLY"
)

func ParsePeriod(s string) (Period, bool) {
	p := Period(s)
	switch p {
	case PeriodDaily, PeriodMonthly, PeriodYearly:
		return p, true
	}
	return "", false
}

// layout is the Go time layout of a bucket label; sqlFormat is the matching
// to_char pattern.
func (p Period) layout() (layout, sqlFormat string) {
	switch p {
	case PeriodMonthly:
		return "2006-01", "YYYY-MM"
	case PeriodYearly:
		return "2006", "YYYY"
	default:
		return "2006-01-02", "YYYY-MM-DD"
	}
}

func (p Period) bucketStart(t time.Time) time.Time {
	switch p {
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case PeriodYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
}

func (p Period) next(t time.Time) time.Time {
	switch p {
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	case PeriodYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

type Overview struct {
	TotalOrders       int64           `json:"totalOrders"`
	PendingOrders     int64           `json:"pendingOrders"`
	CompletedOrders   int64           `json:"completedOrders"`
	CancelledOrders   int64           `json:"cancelledOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	RevenueThisMonth  decimal.Decimal `json:"revenueThisMonth"`
	RevenueThisYear   decimal.Decimal `json:"revenueThisYear"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type SalesPoint struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int64           `json:"orderCount"`
}

type SalesReport struct {
	Period       Period          `json:"period"`
	StartDate    string          `json:"startDate"`
	EndDate      string          `json:"endDate"`
	Data         []SalesPoint    `json:"data"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalOrders  int64           `json:"totalOrders"`
}

type TopProduct struct {
	ProductID    int64           `json:"productId"`
	ProductName  string          `json:"productName"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     *string         `json:"imageUrl"`
	TotalSold    int64           `json:"totalSold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

// Analytics aggregates orders for the admin dashboard. Revenue only counts
// orders that were confirmed and not cancelled or returned.
type Analytics interface {
	Overview(ctx context.Context) (*Overview, error)
	// Sales returns one point per period bucket between start and end
	// inclusive, with empty buckets reported as zero.
	Sales(ctx context.Context, period Period, start, end time.Time) (*SalesReport, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
}

type analytics struct {
	db  db.Querier
	loc *time.Location
	now func() time.Time
}

func NewAnalytics(q db.Querier, loc *time.Location) Analytics {
	if loc == nil || loc == time.Local {
		loc = time.UTC
	}
	return &analytics{db: q, loc: loc, now: time.Now}
}

func (a *analytics) Overview(ctx context.Context) (*Overview, error) {
	now := a.now().In(a.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, a.loc)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, a.loc)

	var ov Overview
	err := a.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PENDING'),
			COUNT(*) FILTER (WHERE status = 'DELIVERED'),
			COUNT(*) FILTER (WHERE status = 'CANCELLED'),
			COALESCE(SUM(total_amount) FILTER (WHERE status = ANY($1)), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE status = ANY($1) AND created_at >= $2), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE status = ANY($1) AND created_at >= $3), 0)
		FROM orders
	`, pq.Array(revenueStatuses), monthStart, yearStart).Scan(
		&ov.TotalOrders, &ov.PendingOrders, &ov.CompletedOrders, &ov.CancelledOrders,
		&ov.TotalRevenue, &ov.RevenueThisMonth, &ov.RevenueThisYear,
	)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to aggregate orders", zap.String("method", "Overview"), zap.Error(err))
		return nil, fmt.Errorf("order overview: %w", err)
	}

	ov.AverageOrderValue = decimal.Zero
	if ov.TotalOrders > 0 {
		ov.AverageOrderValue = ov.TotalRevenue.DivRound(decimal.NewFromInt(ov.TotalOrders), 2)
	}
	return &ov, nil
}

func (a *analytics) Sales(ctx context.Context, period Period, start, end time.Time) (*SalesReport, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "analytics"),
		zap.String("method", "Sales"),
		zap.String("period", string(period)),
	)

	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, a.loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, a.loc)
	layout, sqlFormat := period.layout()

	rows, err := a.db.QueryContext(ctx, `
		SELECT to_char(created_at AT TIME ZONE $1, $2) AS bucket,
			COALESCE(SUM(total_amount), 0), COUNT(*)
		FROM orders
		WHERE status = ANY($3) AND created_at >= $4 AND created_at < $5
		GROUP BY bucket
		ORDER BY bucket
	`, a.loc.String(), sqlFormat, pq.Array(revenueStatuses), from, last.AddDate(0, 0, 1))
	if err != nil {
		log.Error("failed to query sales", zap.Error(err))
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	buckets := make(map[string]SalesPoint)
	for rows.Next() {
		var p SalesPoint
		if err := rows.Scan(&p.Date, &p.Revenue, &p.OrderCount); err != nil {
			return nil, fmt.Errorf("scan sales: %w", err)
		}
		buckets[p.Date] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sales: %w", err)
	}

	report := &SalesReport{
		Period:       period,
		StartDate:    from.Format("2006-01-02"),
		EndDate:      last.Format("2006-01-02"),
		Data:         []SalesPoint{},
		TotalRevenue: decimal.Zero,
	}
	for t := period.bucketStart(from); !t.After(last); t = period.next(t) {
		label := t.Format(layout)
		p, ok := buckets[label]
		if !ok {
			p = SalesPoint{Date: label, Revenue: decimal.Zero}
		}
		report.Data = append(report.Data, p)
		report.TotalRevenue = report.TotalRevenue.Add(p.Revenue)
		report.TotalOrders += p.OrderCount
	}
	return report, nil
}

func (a *analytics) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.price, p.image_url,
			SUM(oi.quantity) AS total_sold, SUM(oi.subtotal)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.status = ANY($1)
		GROUP BY p.id, p.name, p.price, p.image_url
		ORDER BY total_sold DESC, p.id
		LIMIT $2
	`, pq.Array(revenueStatuses), limit)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to query top products", zap.Error(err))
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	out := make([]TopProduct, 0, limit)
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.ProductName, &tp.Price, &tp.ImageURL, &tp.TotalSold, &tp.TotalRevenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, tp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top products: %w", err)
	}
	return out, nil
}
