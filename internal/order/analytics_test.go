package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalytics(t *testing.T) (*analytics, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return &analytics{db: db, loc: time.UTC, now: func() time.Time { return now }}, mock
}

func dateUTC(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnalytics_Overview(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		a, mock := newTestAnalytics(t)
		mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE status = 'PENDING'\).*FROM orders`).
			WithArgs(sqlmock.AnyArg(), dateUTC(2026, 10, 1), dateUTC(2026, 1, 1)).
			WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "completed", "cancelled", "revenue", "month", "year"}).
				AddRow(7, 2, 3, 1, "1000000.00", "400000.00", "1000000.00"))

		ov, err := a.Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), ov.TotalOrders)
		assert.Equal(t, int64(2), ov.PendingOrders)
		assert.Equal(t, int64(3), ov.CompletedOrders)
		assert.Equal(t, int64(1), ov.CancelledOrders)
		assert.Equal(t, "400000.00", ov.RevenueThisMonth.StringFixed(2))
		assert.Equal(t, "142857.14", ov.AverageOrderValue.StringFixed(2))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoOrders", func(t *testing.T) {
		a, mock := newTestAnalytics(t)
		mock.ExpectQuery(`FROM orders`).
			WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "completed", "cancelled", "revenue", "month", "year"}).
				AddRow(0, 0, 0, 0, "0", "0", "0"))

		ov, err := a.Overview(ctx)
		require.NoError(t, err)
		assert.True(t, ov.AverageOrderValue.IsZero())
	})

	t.Run("QueryError", func(t *testing.T) {
		a, mock := newTestAnalytics(t)
		mock.ExpectQuery(`FROM orders`).WillReturnError(errors.New("db down"))

		_, err := a.Overview(ctx)
		assert.ErrorContains(t, err, "order overview")
	})
}

func TestAnalytics_Sales(t *testing.T) {
	ctx := context.Background()
	salesColumns := []string{"bucket", "revenue", "order_count"}

	t.Run("FillsEmptyDays", func(t *testing.T) {
		a, mock := newTestAnalytics(t)
		mock.ExpectQuery(`to_char\(created_at AT TIME ZONE \$1, \$2\).*GROUP BY bucket`).
			WithArgs("UTC", "YYYY-MM-DD", sqlmock.AnyArg(), dateUTC(2026, 10, 1), dateUTC(2026, 10, 4)).
			WillReturnRows(sqlmock.NewRows(salesColumns).AddRow("2026-10-02", "250000.00", 2))

		report, err := a.Sales(ctx, PeriodDaily, dateUTC(2026, 10, 1), dateUTC(2026, 10, 3))
		require.NoError(t, err)
		require.Len(t, report.Data, 3)
		assert.Equal(t, "2026-10-01", report.Data[0].Date)
		assert.True(t, report.Data[0].Revenue.IsZero())
		assert.Equal(t, "250000.00", report.Data[1].Revenue.StringFixed(2))
		assert.Equal(t, int64(2), report.Data[1].OrderCount)
		assert.Equal(t, "2026-10-03", report.Data[2].Date)
		assert.Equal(t, "250000.00", report.TotalRevenue.StringFixed(2))
		assert.Equal(t, int64(2), report.TotalOrders)
		assert.Equal(t, "2026-10-01", report.StartDate)
		assert.Equal(t, "2026-10-03", report.EndDate)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	tests := []struct {
		name      string
		period    Period
		start     time.Time
		end       time.Time
		sqlFormat string
		labels    []string
	}{
		{"Monthly", PeriodMonthly, dateUTC(2026, 1, 15), dateUTC(2026, 3, 2), "YYYY-MM", []string{"2026-01", "2026-02", "2026-03"}},
		{"Yearly", PeriodYearly, dateUTC(2024, 6, 1), dateUTC(2026, 1, 1), "YYYY", []string{"2024", "2025", "2026"}},
		{"SingleDay", PeriodDaily, dateUTC(2026, 2, 28), dateUTC(2026, 2, 28), "YYYY-MM-DD", []string{"2026-02-28"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, mock := newTestAnalytics(t)
			mock.ExpectQuery(`GROUP BY bucket`).
				WithArgs("UTC", tt.sqlFormat, sqlmock.AnyArg(), tt.start, tt.end.AddDate(0, 0, 1)).
				WillReturnRows(sqlmock.NewRows(salesColumns))

			report, err := a.Sales(ctx, tt.period, tt.start, tt.end)
			require.NoError(t, err)

			labels := make([]string, 0, len(report.Data))
			for _, p := range report.Data {
				labels = append(labels, p.Date)
			}
			assert.Equal(t, tt.labels, labels)
			assert.True(t, report.TotalRevenue.IsZero())
		})
	}
}

func TestAnalytics_TopProducts(t *testing.T) {
	ctx := context.Background()
	a, mock := newTestAnalytics(t)

	mock.ExpectQuery(`FROM order_items oi.*ORDER BY total_sold DESC`).
		WithArgs(sqlmock.AnyArg(), 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "image_url", "total_sold", "total_revenue"}).
			AddRow(10, "Basic Tee", "100000.00", "https://cdn/tee.png", 12, "1200000.00").
			AddRow(11, "Hoodie", "350000.00", nil, 3, "1050000.00"))

	out, err := a.TopProducts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, int64(10), out[0].ProductID)
	assert.Equal(t, int64(12), out[0].TotalSold)
	assert.Equal(t, "1200000.00", out[0].TotalRevenue.StringFixed(2))
	require.NotNil(t, out[0].ImageURL)
	assert.Nil(t, out[1].ImageURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParsePeriod(t *testing.T) {
	p, ok := ParsePeriod("MONTHLY")
	assert.True(t, ok)
	assert.Equal(t, PeriodMonthly, p)

	_, ok = ParsePeriod("weekly")
	assert.False(t, ok)
}
