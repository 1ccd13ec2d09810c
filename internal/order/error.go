package order

import "storefront-be/internal/apperr"

var (
	ErrOrderNotFound           = apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "order not found")
	ErrOrderForbidden          = apperr.New(apperr.KindForbidden, apperr.CodeForbidden, "You do not have permission to access this order")
	ErrCartEmpty               = apperr.New(apperr.KindBusiness, apperr.CodeCartEmpty, "Cart is empty")
	ErrInvalidStatusTransition = apperr.New(apperr.KindBusiness, apperr.CodeInvalidStatusTransition, "invalid status transition")
	ErrOrderNotCancellable     = apperr.New(apperr.KindBusiness, apperr.CodeOrderNotCancellable, "order cannot be cancelled")
	ErrInvalidPaymentMethod    = apperr.New(apperr.KindValidation, apperr.CodeValidation, "invalid payment method")
	ErrInvalidStatus           = apperr.New(apperr.KindValidation, apperr.CodeValidation, "invalid order status")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
