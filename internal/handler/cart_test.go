package handler

import (
	"net/http"
	"testing"

	"storefront-be/internal/cart"
	"storefront-be/internal/inventory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleCart() *cart.View {
	return &cart.View{
		ID: 3,
		Items: []cart.ItemView{{
			ID:          11,
			ProductID:   10,
			ProductName: "Basic Tee",
			Price:       decimal.NewFromInt(100000),
			Quantity:    2,
			Size:        strPtr("M"),
			Subtotal:    decimal.NewFromInt(200000),
			Available:   5,
		}},
		TotalItems: 2,
		Subtotal:   decimal.NewFromInt(200000),
	}
}

func TestCartHandler_GetCart(t *testing.T) {
	carts := new(MockCartService)
	router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})
	carts.On("GetCart", mock.Anything, buyer).Return(sampleCart(), nil)

	rec := do(t, router, http.MethodGet, "/api/v1/cart", "", &buyer)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(2), data["totalItems"])
	assert.Equal(t, "200000", data["subtotal"])
}

func TestCartHandler_AddItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		carts := new(MockCartService)
		router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})
		carts.On("AddItem", mock.Anything, buyer, cart.AddItemInput{
			ProductID: 10,
			Quantity:  2,
			Size:      strPtr("M"),
		}).Return(sampleCart(), nil)

		rec := do(t, router, http.MethodPost, "/api/v1/cart/items", `{"productId":10,"quantity":2,"size":" M ","color":""}`, &buyer)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "Item added to cart", decode(t, rec)["message"])
		carts.AssertExpectations(t)
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		carts := new(MockCartService)
		router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})

		rec := do(t, router, http.MethodPost, "/api/v1/cart/items", `{"productId":10,"quantity":0}`, &buyer)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		carts.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("OutOfStock", func(t *testing.T) {
		carts := new(MockCartService)
		router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})
		carts.On("AddItem", mock.Anything, buyer, mock.Anything).Return(nil, inventory.ErrInsufficientStock)

		rec := do(t, router, http.MethodPost, "/api/v1/cart/items", `{"productId":10,"quantity":9}`, &buyer)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, rec))
	})

	t.Run("Anonymous", func(t *testing.T) {
		carts := new(MockCartService)
		router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})

		rec := do(t, router, http.MethodPost, "/api/v1/cart/items", `{"productId":10,"quantity":1}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestCartHandler_UpdateItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		carts := new(MockCartService)
		router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})
		carts.On("UpdateItem", mock.Anything, buyer, int64(11), 3).Return(sampleCart(), nil)

		rec := do(t, router, http.MethodPut, "/api/v1/cart/items/11", `{"quantity":3}`, &buyer)

		assert.Equal(t, http.StatusOK, rec.Code)
		carts.AssertExpectations(t)
	})

	t.Run("ItemNotFound", func(t *testing.T) {
		carts := new(MockCartService)
		router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})
		carts.On("UpdateItem", mock.Anything, buyer, int64(99), 1).Return(nil, cart.ErrCartItemNotFound)

		rec := do(t, router, http.MethodPut, "/api/v1/cart/items/99", `{"quantity":1}`, &buyer)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		carts := new(MockCartService)
		router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})

		rec := do(t, router, http.MethodPut, "/api/v1/cart/items/-1", `{"quantity":1}`, &buyer)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCartHandler_RemoveAndClear(t *testing.T) {
	carts := new(MockCartService)
	router := newTestRouter(t, Handlers{Cart: NewCartHandler(carts)})
	carts.On("RemoveItem", mock.Anything, buyer, int64(11)).Return(&cart.View{ID: 3, Items: []cart.ItemView{}}, nil)
	carts.On("Clear", mock.Anything, buyer).Return(nil)

	rec := do(t, router, http.MethodDelete, "/api/v1/cart/items/11", "", &buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Item removed from cart", decode(t, rec)["message"])

	rec = do(t, router, http.MethodDelete, "/api/v1/cart", "", &buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cart cleared", decode(t, rec)["message"])

	carts.AssertExpectations(t)
}
