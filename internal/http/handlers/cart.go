package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/cart"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/http/dto"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
)

type CartHandler struct{}

func NewCartHandler() *CartHandler { return &CartHandler{} }

func (h *CartHandler) GetCartMe(w http.ResponseWriter, r *http.Request) {
	sf := storefrontFrom(r.Context())
	writeJSON(w, http.StatusOK, dto.NewCartView(sf.Cart.Snapshot(), sf.Cart.Err()))
}

// RefreshMe reconciles the local cart with the server. A failed reload leaves
// the cart empty and answers 502 with the (empty) cart in the body.
func (h *CartHandler) RefreshMe(w http.ResponseWriter, r *http.Request) {
	sf := storefrontFrom(r.Context())
	if err := sf.Cart.Refresh(r.Context()); err != nil {
		if errors.Is(err, cart.ErrAuthRequired) {
			writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
			return
		}
		writeJSON(w, http.StatusBadGateway, dto.NewCartView(sf.Cart.Snapshot(), err))
		return
	}
	writeJSON(w, http.StatusOK, dto.NewCartView(sf.Cart.Snapshot(), nil))
}

func (h *CartHandler) AddItemMe(w http.ResponseWriter, r *http.Request) {
	var req dto.AddCartItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ListingID = strings.TrimSpace(req.ListingID)
	if !listing.ValidID(req.ListingID) {
		writeError(w, r, http.StatusBadRequest, "invalid listing id")
		return
	}

	sf := storefrontFrom(r.Context())
	item, err := sf.Cart.AddItem(r.Context(), req.ListingID)
	if err != nil {
		if errors.Is(err, cart.ErrAuthRequired) {
			writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
			return
		}
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *CartHandler) RemoveItemMe(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	if _, err := strconv.ParseInt(itemID, 10, 64); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid cart item id")
		return
	}

	sf := storefrontFrom(r.Context())
	if err := sf.Cart.RemoveItem(r.Context(), itemID); err != nil {
		switch {
		case errors.Is(err, cart.ErrAuthRequired):
			writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
			return
		case errors.Is(err, cart.ErrItemNotFound):
			writeError(w, r, http.StatusNotFound, "cart item not found")
			return
		}
		writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
