package clients

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
)

type CatalogClient struct{ c *Client }

func NewCatalogClient(c *Client) *CatalogClient { return &CatalogClient{c: c} }

func (cc *CatalogClient) Categories(ctx context.Context) ([]listing.Facet, error) {
	return call[[]listing.Facet](ctx, cc.c, http.MethodGet, "/api/categories", "", nil)
}

func (cc *CatalogClient) Manufacturers(ctx context.Context) ([]listing.Facet, error) {
	return call[[]listing.Facet](ctx, cc.c, http.MethodGet, "/api/manufacturers", "", nil)
}

func (cc *CatalogClient) Series(ctx context.Context) ([]listing.Facet, error) {
	return call[[]listing.Facet](ctx, cc.c, http.MethodGet, "/api/series", "", nil)
}

func (cc *CatalogClient) Products(ctx context.Context) ([]listing.Product, error) {
	ws, err := call[[]productWire](ctx, cc.c, http.MethodGet, "/api/products", "", nil)
	if err != nil {
		return nil, err
	}
	out := make([]listing.Product, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.toProduct())
	}
	return out, nil
}

// Product fetches one catalog product; a 404 matches ErrNotFound.
func (cc *CatalogClient) Product(ctx context.Context, id string) (listing.Product, error) {
	w, err := call[productWire](ctx, cc.c, http.MethodGet, "/api/products/"+id, "", nil)
	if err != nil {
		return listing.Product{}, err
	}
	return w.toProduct(), nil
}

// FilterOptions fetches the three facet lists concurrently. Any failure fails
// the whole call.
func (cc *CatalogClient) FilterOptions(ctx context.Context) (listing.FilterOptions, error) {
	opts := listing.FilterOptions{
		Conditions: []listing.Condition{listing.ConditionNew, listing.ConditionLikeNew, listing.ConditionUsed, listing.ConditionDamaged},
		Sorts:      []listing.Sort{listing.SortNewest, listing.SortPriceAsc, listing.SortPriceDesc},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		opts.Categories, err = cc.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		opts.Manufacturers, err = cc.Manufacturers(gctx)
		return err
	})
	g.Go(func() (err error) {
		opts.Series, err = cc.Series(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return listing.FilterOptions{}, err
	}
	return opts, nil
}
