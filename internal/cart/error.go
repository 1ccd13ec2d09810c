package cart

import "storefront-be/internal/apperr"

var (
	ErrCartItemNotFound = apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "cart item not found")
	ErrInvalidQuantity  = apperr.New(apperr.KindValidation, apperr.CodeValidation, "quantity must be at least 1")
)
