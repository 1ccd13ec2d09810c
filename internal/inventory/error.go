package inventory

import "storefront-be/internal/apperr"

var (
	ErrInsufficientStock = apperr.New(apperr.KindBusiness, apperr.CodeInsufficientStock, "insufficient stock")
	ErrVariantNotFound   = apperr.New(apperr.KindBusiness, apperr.CodeVariantNotFound, "product variant not found")
)
