package clients

import (
	"context"
	"net/http"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/order"
)

type OrderClient struct{ c *Client }

func NewOrderClient(c *Client) *OrderClient { return &OrderClient{c: c} }

func (oc *OrderClient) CreateOrder(ctx context.Context, req order.CheckoutRequest) (order.Order, error) {
	w, err := call[orderWire](ctx, oc.c, http.MethodPost, "/api/orders", "", req)
	if err != nil {
		return order.Order{}, err
	}
	return w.toOrder(), nil
}

func (oc *OrderClient) GetOrder(ctx context.Context, orderID string) (order.Order, error) {
	w, err := call[orderWire](ctx, oc.c, http.MethodGet, "/api/orders/"+orderID, "", nil)
	if err != nil {
		return order.Order{}, err
	}
	return w.toOrder(), nil
}

func (oc *OrderClient) ListOrdersByBuyer(ctx context.Context, buyerID string) ([]order.Order, error) {
	ws, err := call[[]orderWire](ctx, oc.c, http.MethodGet, "/api/orders/user/"+buyerID, "", nil)
	if err != nil {
		return nil, err
	}
	out := make([]order.Order, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toOrder())
	}
	return out, nil
}
