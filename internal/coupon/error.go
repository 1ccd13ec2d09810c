package coupon

import "storefront-be/internal/apperr"

var (
	ErrInvalidCoupon  = apperr.New(apperr.KindBusiness, apperr.CodeInvalidCoupon, "Invalid or expired coupon code")
	ErrMinOrderNotMet = apperr.New(apperr.KindBusiness, apperr.CodeMinOrderNotMet, "minimum order amount not met")
)
