package payment

import "storefront-be/internal/apperr"

var (
	ErrInvalidSignature = apperr.New(apperr.KindUnauthorized, apperr.CodeInvalidSignature, "invalid signature")
	ErrInvalidCallback  = apperr.New(apperr.KindValidation, apperr.CodeValidation, "invalid payment callback")
	ErrNotPayable       = apperr.New(apperr.KindBusiness, apperr.CodeValidation, "order is not awaiting online payment")
)
