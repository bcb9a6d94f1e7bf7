package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/http/dto"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
)

// SellerHandler serves the signed-in user's own listings.
type SellerHandler struct{ listings *clients.ListingClient }

func NewSellerHandler(listings *clients.ListingClient) *SellerHandler {
	return &SellerHandler{listings: listings}
}

func (h *SellerHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	sess, ok := storefrontFrom(r.Context()).Active()
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	ls, err := h.listings.ByUser(r.Context(), sess.UserID)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (h *SellerHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, ok := storefrontFrom(r.Context()).Active()
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	var req dto.CreateListingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.Validate(); fields != nil {
		writeFieldErrors(w, r, fields)
		return
	}
	l, err := h.listings.Create(r.Context(), req.ToCreate(sess.UserID))
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// Delete removes a listing owned by the caller. Admins may delete any.
func (h *SellerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := storefrontFrom(r.Context()).Active()
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	id := chi.URLParam(r, "listingId")
	if !listing.ValidID(id) {
		writeError(w, r, http.StatusBadRequest, "invalid listing id")
		return
	}

	l, err := h.listings.GetListing(r.Context(), id)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "listing not found")
			return
		}
		writeUpstreamError(w, r, err)
		return
	}
	if l.UserID != sess.UserID && !sess.IsAdmin() {
		writeError(w, r, http.StatusForbidden, "listing belongs to another seller")
		return
	}

	if err := h.listings.Delete(r.Context(), id); err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
