package clients

import (
	"context"
	"errors"
	"net/http"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
)

type ListingClient struct{ c *Client }

func NewListingClient(c *Client) *ListingClient { return &ListingClient{c: c} }

func (lc *ListingClient) SearchListings(ctx context.Context, f listing.Filter) (listing.Page, error) {
	page, err := call[pageWire](ctx, lc.c, http.MethodGet, "/api/listings", f.Values().Encode(), nil)
	if err != nil {
		return listing.Page{}, err
	}
	return page.toPage(), nil
}

func (lc *ListingClient) GetListing(ctx context.Context, id string) (listing.Listing, error) {
	w, err := call[listingWire](ctx, lc.c, http.MethodGet, "/api/listings/"+id, "", nil)
	if err != nil {
		return listing.Listing{}, err
	}
	return w.toListing(), nil
}

// ListingExists reports false only when the trade service answers 404.
func (lc *ListingClient) ListingExists(ctx context.Context, id string) (bool, error) {
	_, err := lc.GetListing(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (lc *ListingClient) ByUser(ctx context.Context, userID string) ([]listing.Listing, error) {
	ws, err := call[[]listingWire](ctx, lc.c, http.MethodGet, "/api/listings/user/"+userID, "", nil)
	if err != nil {
		return nil, err
	}
	return toListings(ws), nil
}

func (lc *ListingClient) ByProduct(ctx context.Context, productID string) ([]listing.Listing, error) {
	ws, err := call[[]listingWire](ctx, lc.c, http.MethodGet, "/api/listings/product/"+productID, "", nil)
	if err != nil {
		return nil, err
	}
	return toListings(ws), nil
}

func (lc *ListingClient) Create(ctx context.Context, req listing.CreateRequest) (listing.Listing, error) {
	w, err := call[listingWire](ctx, lc.c, http.MethodPost, "/api/listings", "", req)
	if err != nil {
		return listing.Listing{}, err
	}
	return w.toListing(), nil
}

func (lc *ListingClient) Delete(ctx context.Context, id string) error {
	return callVoid(ctx, lc.c, http.MethodDelete, "/api/listings/"+id, nil)
}
