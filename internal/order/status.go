package order

import "time"

const paymentFailedReason = "payment failed"

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	switch st {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipping,
		StatusDelivered, StatusCancelled, StatusReturned:
		return st, true
	}
	return "", false
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s Status) UserCancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Transition is the outcome of a status change: the new order value and
// whether its reserved stock must be returned.
type Transition struct {
	Order   Order
	Restock bool
}

// ApplyAdminStatus moves a non-terminal order to any other status.
func ApplyAdminStatus(o Order, to Status, note *string, now time.Time) (Transition, error) {
	if o.Status.IsTerminal() || o.Status == to {
		return Transition{}, ErrInvalidStatusTransition.WithMessage(
			"Cannot change order status from %s to %s", o.Status, to)
	}

	o.Status = to
	o.UpdatedAt = now

	switch to {
	case StatusDelivered:
		o.CompletedAt = &now
		o.PaymentStatus = PaymentPaid
	case StatusCancelled:
		o.CancelledAt = &now
		o.CancelReason = note
		return Transition{Order: o, Restock: true}, nil
	}

	return Transition{Order: o}, nil
}

// ApplyUserCancel cancels an order on behalf of its owner.
func ApplyUserCancel(o Order, userID int64, reason string, now time.Time) (Transition, error) {
	if o.UserID != userID {
		return Transition{}, ErrOrderForbidden
	}
	if !o.Status.UserCancellable() {
		return Transition{}, ErrOrderNotCancellable.WithMessage(
			"Order cannot be cancelled in status: %s", o.Status)
	}

	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = &reason
	o.UpdatedAt = now

	return Transition{Order: o, Restock: true}, nil
}

// ApplyPaymentResult folds a gateway outcome into the order. changed is false
// when the outcome does not apply to the current state, which makes replays
// harmless.
func ApplyPaymentResult(o Order, success bool, now time.Time) (t Transition, changed bool) {
	if success {
		if o.Status != StatusPending {
			return Transition{}, false
		}
		o.Status = StatusConfirmed
		o.PaymentStatus = PaymentPaid
		o.UpdatedAt = now
		return Transition{Order: o}, true
	}

	if o.Status.IsTerminal() {
		return Transition{}, false
	}

	reason := paymentFailedReason
	o.Status = StatusCancelled
	o.PaymentStatus = PaymentFailed
	o.CancelledAt = &now
	o.CancelReason = &reason
	o.UpdatedAt = now
	return Transition{Order: o, Restock: true}, true
}
