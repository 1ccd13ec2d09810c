package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront-be/internal/db"
	"storefront-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// errOrderNumberTaken signals a unique violation on orders.order_number; the
// checkout retries with a fresh number.
var errOrderNumberTaken = errors.New("order number already taken")

const orderColumns = `o.id, o.order_number, o.user_id, o.customer_email, o.status,
		o.subtotal, o.shipping_fee, o.discount_amount, o.coupon_code, o.total_amount,
		o.payment_method, o.payment_status, o.receiver_name, o.receiver_phone,
		o.shipping_address, o.shipping_city, o.shipping_district, o.note,
		o.created_at, o.updated_at, o.completed_at, o.cancelled_at, o.cancel_reason`

type Repository interface {
	Insert(ctx context.Context, q db.Querier, o *Order) error
	GetByID(ctx context.Context, q db.Querier, id int64) (*Order, error)
	// GetByIDForUpdate locks the order row until the transaction ends.
	GetByIDForUpdate(ctx context.Context, q db.Querier, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, q db.Querier, o *Order) error
	// List returns one page of orders; userID restricts to that user's orders.
	List(ctx context.Context, q db.Querier, userID *int64, filter ListFilter) ([]*Order, int, error)
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) Insert(ctx context.Context, q db.Querier, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Insert"),
		zap.String("order_number", o.OrderNumber),
	)

	err := q.QueryRowContext(ctx, `
		INSERT INTO orders (
			order_number, user_id, customer_email, status,
			subtotal, shipping_fee, discount_amount, coupon_code, total_amount,
			payment_method, payment_status, receiver_name, receiver_phone,
			shipping_address, shipping_city, shipping_district, note
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING id, created_at, updated_at
	`,
		o.OrderNumber, o.UserID, o.CustomerEmail, o.Status,
		o.Subtotal, o.ShippingFee, o.DiscountAmount, o.CouponCode, o.TotalAmount,
		o.PaymentMethod, o.PaymentStatus, o.Shipping.ReceiverName, o.Shipping.ReceiverPhone,
		o.Shipping.ShippingAddress, o.Shipping.ShippingCity, o.Shipping.ShippingDistrict, o.Note,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation &&
			(pqErr.Constraint == "" || strings.Contains(pqErr.Constraint, "order_number")) {
			log.Warn("order number collision")
			return errOrderNumberTaken
		}
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err := q.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, price, quantity,
				size, color, image_url, subtotal
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING id
		`,
			it.OrderID, it.ProductID, it.ProductName, it.Price, it.Quantity,
			it.Size, it.Color, it.ImageURL, it.Subtotal,
		).Scan(&it.ID)
		if err != nil {
			log.Error("failed to insert order item", zap.Int64("product_id", it.ProductID), zap.Error(err))
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, q db.Querier, id int64) (*Order, error) {
	return r.get(ctx, q, id, "")
}

func (r *repository) GetByIDForUpdate(ctx context.Context, q db.Querier, id int64) (*Order, error) {
	return r.get(ctx, q, id, " FOR UPDATE")
}

func (r *repository) get(ctx context.Context, q db.Querier, id int64, lock string) (*Order, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		WHERE o.id = $1`+lock, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound.WithMessage("Order not found with id: %d", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.listItems(ctx, q, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *repository) UpdateStatus(ctx context.Context, q db.Querier, o *Order) error {
	res, err := q.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    payment_status = $2,
		    completed_at = $3,
		    cancelled_at = $4,
		    cancel_reason = $5,
		    updated_at = NOW()
		WHERE id = $6
	`, o.Status, o.PaymentStatus, o.CompletedAt, o.CancelledAt, o.CancelReason, o.ID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, q db.Querier, userID *int64, filter ListFilter) ([]*Order, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.Int("page", filter.Page),
		zap.Int("size", filter.Size),
	)

	where := " WHERE 1=1"
	args := []any{}
	argIndex := 1

	// ---------- ACCESS CONTROL ----------
	if userID != nil {
		where += fmt.Sprintf(" AND o.user_id = $%d", argIndex)
		args = append(args, *userID)
		argIndex++
	}

	// ---------- FILTERING ----------
	if filter.Keyword != nil && strings.TrimSpace(*filter.Keyword) != "" {
		where += fmt.Sprintf(
			" AND (o.order_number ILIKE $%d OR o.receiver_name ILIKE $%d OR o.receiver_phone ILIKE $%d)",
			argIndex, argIndex, argIndex,
		)
		args = append(args, "%"+strings.TrimSpace(*filter.Keyword)+"%")
		argIndex++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND o.status = $%d", argIndex)
		args = append(args, *filter.Status)
		argIndex++
	}

	var total int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders o"+where, args...).Scan(&total); err != nil {
		log.Error("failed to count orders", zap.Error(err))
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	// ---------- PAGINATION ----------
	query := "SELECT " + orderColumns + " FROM orders o" + where +
		fmt.Sprintf(" ORDER BY o.created_at DESC, o.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Size, (filter.Page-1)*filter.Size)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	ids := []int64{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	if len(ids) > 0 {
		items, err := r.listItems(ctx, q, ids)
		if err != nil {
			return nil, 0, err
		}
		for _, o := range orders {
			o.Items = items[o.ID]
		}
	}

	log.Debug("list orders success", zap.Int("count", len(orders)), zap.Int("total", total))
	return orders, total, nil
}

func (r *repository) listItems(ctx context.Context, q db.Querier, orderIDs []int64) (map[int64][]Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, price, quantity,
		       size, color, image_url, subtotal
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]Item, len(orderIDs))
	for rows.Next() {
		var it Item
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Price, &it.Quantity,
			&it.Size, &it.Color, &it.ImageURL, &it.Subtotal,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*Order, error) {
	var o Order
	if err := s.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerEmail, &o.Status,
		&o.Subtotal, &o.ShippingFee, &o.DiscountAmount, &o.CouponCode, &o.TotalAmount,
		&o.PaymentMethod, &o.PaymentStatus, &o.Shipping.ReceiverName, &o.Shipping.ReceiverPhone,
		&o.Shipping.ShippingAddress, &o.Shipping.ShippingCity, &o.Shipping.ShippingDistrict, &o.Note,
		&o.CreatedAt, &o.UpdatedAt, &o.CompletedAt, &o.CancelledAt, &o.CancelReason,
	); err != nil {
		return nil, err
	}
	return &o, nil
}
