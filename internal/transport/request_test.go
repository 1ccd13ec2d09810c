package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-be/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"receiverName" validate:"required,max=10"`
	Phone string `json:"receiverPhone" validate:"required,phone_vn"`
	Qty   int    `json:"quantity" validate:"gte=1"`
}

func TestDecodeJSON(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"receiverName":"An","receiverPhone":"0901234567","quantity":2}`))
		var dst sampleRequest
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &dst))
		assert.Equal(t, 2, dst.Qty)
	})

	t.Run("FieldErrorsUseJSONNames", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"receiverPhone":"12ab","quantity":0}`))
		var dst sampleRequest
		err := DecodeJSON(httptest.NewRecorder(), req, &dst)
		require.ErrorIs(t, err, apperr.ErrValidation)

		details := apperr.From(err).Details
		assert.Equal(t, "is required", details["receiverName"])
		assert.Equal(t, "must be 10 or 11 digits", details["receiverPhone"])
		assert.Contains(t, details, "quantity")
	})

	t.Run("EmptyBody", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst sampleRequest
		err := DecodeJSON(httptest.NewRecorder(), req, &dst)
		assert.Equal(t, "request body is required", apperr.From(err).Message)
	})

	t.Run("Malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
		var dst sampleRequest
		assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), req, &dst), apperr.ErrValidation)
	})
}

func TestPathID(t *testing.T) {
	id, err := PathID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = PathID("-1")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&size=x", nil)

	n, err := QueryInt(req, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = QueryInt(req, "missing", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	_, err = QueryInt(req, "size", 20)
	assert.Error(t, err)
}
