package listing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Facet is one selectable browse filter value (category, manufacturer or
// series) from the catalog service.
type Facet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FilterOptions struct {
	Categories    []Facet     `json:"categories"`
	Manufacturers []Facet     `json:"manufacturers"`
	Series        []Facet     `json:"series"`
	Conditions    []Condition `json:"conditions"`
	Sorts         []Sort      `json:"sorts"`
}

// Product is a catalog entry. Listings are for-sale instances of a product.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug,omitempty"`
	PriceMarket  decimal.Decimal `json:"priceMarket"`
	Released     bool            `json:"released"`
	ReleaseDate  *time.Time      `json:"releaseDate,omitempty"`
	Scale        string          `json:"scale,omitempty"`
	Height       *float64        `json:"height,omitempty"`
	Material     string          `json:"material,omitempty"`
	Description  string          `json:"description,omitempty"`
	Category     *Facet          `json:"category,omitempty"`
	Series       *Facet          `json:"series,omitempty"`
	Manufacturer *Facet          `json:"manufacturer,omitempty"`
	Images       []Image         `json:"images,omitempty"`
}
