// Package apperr holds the error taxonomy shared by every layer. Packages
// declare sentinel *Error values; parameterised copies built with
// WithMessage/WithDetails still match their sentinel through errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindBusiness
	KindNotFound
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

const (
	CodeValidation              = "VALIDATION_ERROR"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeForbidden               = "FORBIDDEN"
	CodeNotFound                = "RESOURCE_NOT_FOUND"
	CodeCartEmpty               = "CART_EMPTY"
	CodeInsufficientStock       = "INSUFFICIENT_STOCK"
	CodeVariantNotFound         = "VARIANT_NOT_FOUND"
	CodeInvalidCoupon           = "INVALID_COUPON"
	CodeMinOrderNotMet          = "MIN_ORDER_NOT_MET"
	CodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	CodeOrderNotCancellable     = "ORDER_NOT_CANCELLABLE"
	CodeInvalidSignature        = "INVALID_SIGNATURE"
	CodeInternal                = "INTERNAL_SERVER_ERROR"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches on Code so that copies produced by WithMessage or WithDetails
// are still recognised as their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	cp.Details = merged
	return &cp
}

var (
	ErrValidation   = New(KindValidation, CodeValidation, "validation failed")
	ErrUnauthorized = New(KindUnauthorized, CodeUnauthorized, "authentication required")
	ErrForbidden    = New(KindForbidden, CodeForbidden, "access denied")
	ErrNotFound     = New(KindNotFound, CodeNotFound, "resource not found")
	ErrInternal     = New(KindInternal, CodeInternal, "internal server error")
)

// From returns the *Error carried by err, or ErrInternal for anything
// unclassified (infrastructure failures).
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal
}

func NotFound(resource string, id any) *Error {
	return ErrNotFound.WithMessage("%s not found with id: %v", resource, id)
}
