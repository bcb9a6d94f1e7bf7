package clients

import (
	"context"
	"net/http"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/cart"
)

// CartClient is the trade service's cart API. It satisfies cart.Backend.
type CartClient struct{ c *Client }

func NewCartClient(c *Client) *CartClient { return &CartClient{c: c} }

type addItemRequest struct {
	ListingID string `json:"listingId"`
}

func (cc *CartClient) GetCart(ctx context.Context, userID string) ([]cart.Item, error) {
	ws, err := call[[]cartItemWire](ctx, cc.c, http.MethodGet, "/api/cart/"+userID, "", nil)
	if err != nil {
		return nil, err
	}
	items := make([]cart.Item, 0, len(ws))
	for _, w := range ws {
		items = append(items, w.toItem())
	}
	return items, nil
}

func (cc *CartClient) AddItem(ctx context.Context, userID, listingID string) (cart.Item, error) {
	w, err := call[cartItemWire](ctx, cc.c, http.MethodPost, "/api/cart/"+userID, "", addItemRequest{ListingID: listingID})
	if err != nil {
		return cart.Item{}, err
	}
	it := w.toItem()
	if it.ListingID == "" {
		it.ListingID = listingID
	}
	return it, nil
}

func (cc *CartClient) RemoveItem(ctx context.Context, itemID string) error {
	return callVoid(ctx, cc.c, http.MethodDelete, "/api/cart/"+itemID, nil)
}

var _ cart.Backend = (*CartClient)(nil)
