package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
)

type ListingHandler struct {
	query    *listing.Query
	listings *clients.ListingClient
	catalog  *clients.CatalogClient
}

func NewListingHandler(q *listing.Query, listings *clients.ListingClient, catalog *clients.CatalogClient) *ListingHandler {
	return &ListingHandler{query: q, listings: listings, catalog: catalog}
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) {
	f, err := listing.ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.query.Search(r.Context(), f)
	if err != nil {
		if errors.Is(err, listing.ErrInvalidFilter) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
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
	writeJSON(w, http.StatusOK, l)
}

func (h *ListingHandler) ByProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")
	if !listing.ValidID(productID) {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	ls, err := h.listings.ByProduct(r.Context(), productID)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (h *ListingHandler) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.catalog.FilterOptions(r.Context())
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (h *ListingHandler) Products(w http.ResponseWriter, r *http.Request) {
	ps, err := h.catalog.Products(r.Context())
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *ListingHandler) Product(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")
	if !listing.ValidID(id) {
		writeError(w, r, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.catalog.Product(r.Context(), id)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "product not found")
			return
		}
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
