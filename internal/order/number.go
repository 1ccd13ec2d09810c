package order

import (
	"context"
	"fmt"
	"time"

	"storefront-be/internal/db"
)

const orderNumberPrefix = "ORD-"

// NumberGenerator hands out order numbers "ORD-YYYYMMDD-NNNNN".
type NumberGenerator interface {
	Next(ctx context.Context, q db.Querier, now time.Time) (string, error)
}

// sequenceGenerator keeps one counter row per calendar day. The upsert takes
// a row lock that serialises concurrent checkouts for the rest of their
// transaction, and a rolled back checkout leaves the counter untouched.
// The counter never falls behind the highest number already stored for the
// day, so a checkout retried after a unique violation moves past the number
// that collided.
type sequenceGenerator struct {
	loc *time.Location
}

func NewNumberGenerator(loc *time.Location) NumberGenerator {
	if loc == nil {
		loc = time.UTC
	}
	return &sequenceGenerator{loc: loc}
}

func (g *sequenceGenerator) Next(ctx context.Context, q db.Querier, now time.Time) (string, error) {
	day := now.In(g.loc)
	prefix := DayPrefix(day)

	var seq int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO order_number_sequences (day, last_value)
		VALUES (
			$1,
			(SELECT COALESCE(MAX(CAST(SUBSTRING(order_number FROM 14) AS BIGINT)), 0) + 1
			 FROM orders
			 WHERE order_number LIKE $2)
		)
		ON CONFLICT (day) DO UPDATE
		SET last_value = GREATEST(order_number_sequences.last_value + 1, EXCLUDED.last_value)
		RETURNING last_value
	`, day.Format("2006-01-02"), prefix+"%").Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}

	return FormatNumber(day, seq), nil
}

// DayPrefix is "ORD-YYYYMMDD-" for day.
func DayPrefix(day time.Time) string {
	return orderNumberPrefix + day.Format("20060102") + "-"
}

// FormatNumber pads seq to five digits; larger values widen.
func FormatNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("%s%05d", DayPrefix(day), seq)
}
