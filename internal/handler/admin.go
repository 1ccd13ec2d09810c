package handler

import (
	"net/http"

	"storefront-be/internal/order"
	"storefront-be/internal/transport"
	"storefront-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	orders order.Service
}

func NewAdminHandler(orders order.Service) *AdminHandler {
	return &AdminHandler{orders: orders}
}

func (h *AdminHandler) Routes(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Put("/orders/{id}/status", h.updateStatus)
}

type updateStatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Note   *string `json:"note" validate:"omitempty,max=500"`
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	res, err := h.orders.ListOrders(r.Context(), actor, filter)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, order.ToListView(res))
}

func (h *AdminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	o, err := h.orders.GetOrder(r.Context(), actor, id)
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, order.ToView(o))
}

func (h *AdminHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	var req updateStatusRequest
	if err := transport.DecodeJSON(w, r, &req); err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), actor, id, order.Status(req.Status), utils.TrimToNil(req.Note))
	if err != nil {
		transport.WriteError(r.Context(), w, err)
		return
	}
	transport.WriteMessage(w, http.StatusOK, order.ToView(o), "Order status updated")
}
