package product

import "storefront-be/internal/apperr"

var ErrProductNotFound = apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "product not found")
