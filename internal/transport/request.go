package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"storefront-be/internal/apperr"
	"storefront-be/internal/utils"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var phoneVN = regexp.MustCompile(`^[0-9]{10,11}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("phone_vn", func(fl validator.FieldLevel) bool {
		return phoneVN.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON reads a JSON body into dst and validates it.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.ErrValidation.WithMessage("request body is required")
		}
		return apperr.ErrValidation.WithMessage("invalid JSON body")
	}

	return Validate(dst)
}

// Validate runs the struct's validate tags. Field failures are reported in
// the error details keyed by JSON field name.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.ErrValidation
	}

	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	return apperr.ErrValidation.WithMessage("Validation failed").WithDetails(details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "phone_vn":
		return "must be 10 or 11 digits"
	case "email":
		return "must be a valid email"
	default:
		return "is invalid"
	}
}

// PathID parses a positive int64 URL parameter.
func PathID(raw string) (int64, error) {
	id, err := utils.ParseID(raw)
	if err != nil {
		return 0, apperr.ErrValidation.WithMessage("invalid id: %q", raw)
	}
	return id, nil
}

// QueryInt parses an optional integer query parameter.
func QueryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.ErrValidation.WithMessage("invalid %s: %q", key, raw)
	}
	return n, nil
}
