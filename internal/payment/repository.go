package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront-be/internal/db"
)

type Repository interface {
	// SaveCallback stores a delivery once per (provider, event id). A repeat
	// of an already processed delivery reports isDuplicate; a repeat of one
	// that failed is handed back for another attempt.
	SaveCallback(ctx context.Context, q db.Querier, o *Outcome, signatureValid bool) (callbackID int64, isDuplicate bool, err error)
	MarkProcessed(ctx context.Context, q db.Querier, callbackID int64) error
	MarkFailed(ctx context.Context, q db.Querier, callbackID int64, reason string) error
}

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) SaveCallback(
	ctx context.Context,
	q db.Querier,
	o *Outcome,
	signatureValid bool,
) (int64, bool, error) {

	const query = `
	INSERT INTO payment_callbacks (
		provider,
		event_id,
		event_type,
		order_id,
		signature_valid,
		payload
	)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (provider, event_id)
	DO UPDATE SET signature_valid = EXCLUDED.signature_valid
	WHERE payment_callbacks.processed_at IS NULL
	RETURNING id;
	`

	payload := []byte(o.Payload)
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	var id int64
	err := q.QueryRowContext(
		ctx,
		query,
		o.Provider,
		o.EventID,
		o.EventType,
		o.OrderID,
		signatureValid,
		payload,
	).Scan(&id)

	if err != nil {
		// Duplicate delivery → idempotent success
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, fmt.Errorf("save payment callback: %w", err)
	}

	return id, false, nil
}

func (r *repository) MarkProcessed(
	ctx context.Context,
	q db.Querier,
	callbackID int64,
) error {

	const query = `
	UPDATE payment_callbacks
	SET processed_at = now(), process_error = NULL
	WHERE id = $1;
	`

	_, err := q.ExecContext(ctx, query, callbackID)
	return err
}

func (r *repository) MarkFailed(
	ctx context.Context,
	q db.Querier,
	callbackID int64,
	reason string,
) error {

	const query = `
	UPDATE payment_callbacks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := q.ExecContext(ctx, query, callbackID, reason)
	return err
}
