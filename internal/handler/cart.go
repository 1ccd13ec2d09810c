package handler

import (
	"net/http"

	"storefront-be/internal/cart"
	"storefront-be/internal/transport"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts cart.Service
}

func NewCartHandler(carts cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) Routes(r chi.Router) {
	r.Get("/", h.getCart)
	r.Delete("/", h.clearCart)
	r.Post("/items", h.addItem)
	r.Put("/items/{itemId}", h.updateItem)
	r.Delete("/items/{itemId}", h.removeItem)
}

type addCartItemRequest struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,min=1"`
	Size      *string `json:"size" validate:"omitempty,max=20"`
	Color     *string `json:"color" validate:"omitempty,max=50"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	view, err := h.carts.GetCart(r.Context(), actor)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	view, err := h.carts.AddItem(r.Context(), actor, cart.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Size:      utils.TrimToNil(req.Size),
		Color:     utils.TrimToNil(req.Color),
	})
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusCreated, view, "Item added to cart")
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	itemID, err := pathID(r, "itemId")
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	var req updateCartItemRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	view, err := h.carts.UpdateItem(r.Context(), actor, itemID, req.Quantity)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, view)
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	itemID, err := pathID(r, "itemId")
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	view, err := h.carts.RemoveItem(r.Context(), actor, itemID)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusOK, view, "Item removed from cart")
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.carts.Clear(r.Context(), actor); err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusOK, nil, "Cart cleared")
}
