package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
)

type OrderHandler struct{ c *clients.OrderClient }

func NewOrderHandler(c *clients.OrderClient) *OrderHandler { return &OrderHandler{c: c} }

func (h *OrderHandler) ListOrdersMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := storefrontFrom(r.Context()).Active()
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	orders, err := h.c.ListOrdersByBuyer(r.Context(), sess.UserID)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrderMe returns one order of the signed-in buyer. Orders of other
// buyers answer 404 like missing ones; admins can read any order.
func (h *OrderHandler) GetOrderMe(w http.ResponseWriter, r *http.Request) {
	sess, ok := storefrontFrom(r.Context()).Active()
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	orderID := chi.URLParam(r, "orderId")
	if _, err := uuid.Parse(orderID); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.c.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "order not found")
			return
		}
		writeUpstreamError(w, r, err)
		return
	}
	if o.BuyerID != sess.UserID && !sess.IsAdmin() {
		writeError(w, r, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, o)
}
