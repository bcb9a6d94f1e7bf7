package clients

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/cart"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/order"
)

// The trade service serializes timestamps without a zone; they are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseDate reads a catalog date, sent either as "2006-01-02" or as epoch
// milliseconds.
func parseDate(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err == nil {
			return &t
		}
		if t := parseTime(s); !t.IsZero() {
			return &t
		}
		return nil
	}
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil {
		t := time.UnixMilli(ms).UTC()
		return &t
	}
	return nil
}

type imageWire struct {
	ID          int64  `json:"id"`
	ImageURL    string `json:"imageUrl"`
	Thumbnail   bool   `json:"thumbnail"`
	IsThumbnail bool   `json:"isThumbnail"`
}

type listingWire struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	ProductID        string          `json:"productId"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity"`
	Condition        string          `json:"condition"`
	Description      string          `json:"description"`
	Status           string          `json:"status"`
	ProductName      string          `json:"productName"`
	ProductThumbnail string          `json:"productThumbnail"`
	Series           string          `json:"series"`
	Manufacturer     string          `json:"manufacturer"`
	Images           []imageWire     `json:"images"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

func (w listingWire) toListing() listing.Listing {
	l := listing.Listing{
		ID:               w.ID,
		UserID:           w.UserID,
		ProductID:        w.ProductID,
		Price:            w.Price,
		Quantity:         w.Quantity,
		Condition:        listing.Condition(w.Condition),
		Description:      w.Description,
		Status:           w.Status,
		ProductName:      w.ProductName,
		ProductThumbnail: w.ProductThumbnail,
		Series:           w.Series,
		Manufacturer:     w.Manufacturer,
		CreatedAt:        parseTime(w.CreatedAt),
		UpdatedAt:        parseTime(w.UpdatedAt),
		Images:           toImages(w.Images),
	}
	return l
}

func toListings(in []listingWire) []listing.Listing {
	out := make([]listing.Listing, 0, len(in))
	for _, w := range in {
		out = append(out, w.toListing())
	}
	return out
}

func toImages(in []imageWire) []listing.Image {
	var out []listing.Image
	for _, img := range in {
		out = append(out, listing.Image{
			ID:          img.ID,
			ImageURL:    img.ImageURL,
			IsThumbnail: img.Thumbnail || img.IsThumbnail,
		})
	}
	return out
}

// productWire accepts both spellings of the released flag.
type productWire struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	PriceMarket  decimal.Decimal `json:"priceMarket"`
	Released     bool            `json:"released"`
	IsReleased   bool            `json:"isReleased"`
	ReleaseDate  json.RawMessage `json:"releaseDate"`
	Scale        string          `json:"scale"`
	Height       *float64        `json:"height"`
	Material     string          `json:"material"`
	Description  string          `json:"description"`
	Category     *listing.Facet  `json:"category"`
	Series       *listing.Facet  `json:"series"`
	Manufacturer *listing.Facet  `json:"manufacturer"`
	Images       []imageWire     `json:"images"`
}

func (w productWire) toProduct() listing.Product {
	return listing.Product{
		ID:           w.ID,
		Name:         w.Name,
		Slug:         w.Slug,
		PriceMarket:  w.PriceMarket,
		Released:     w.Released || w.IsReleased,
		ReleaseDate:  parseDate(w.ReleaseDate),
		Scale:        w.Scale,
		Height:       w.Height,
		Material:     w.Material,
		Description:  w.Description,
		Category:     w.Category,
		Series:       w.Series,
		Manufacturer: w.Manufacturer,
		Images:       toImages(w.Images),
	}
}

type pageWire struct {
	CurrentPage   int           `json:"currentPage"`
	PageSize      int           `json:"pageSize"`
	TotalPages    int           `json:"totalPages"`
	TotalElements int64         `json:"totalElements"`
	Data          []listingWire `json:"data"`
}

func (w pageWire) toPage() listing.Page {
	return listing.Page{
		CurrentPage:   w.CurrentPage,
		PageSize:      w.PageSize,
		TotalPages:    w.TotalPages,
		TotalElements: w.TotalElements,
		Data:          toListings(w.Data),
	}
}

// cartItemWire ids are numeric on the wire.
type cartItemWire struct {
	ID        json.Number  `json:"id"`
	UserID    string       `json:"userId"`
	Listing   *listingWire `json:"listing"`
	CreatedAt string       `json:"createdAt"`
}

func (w cartItemWire) toItem() cart.Item {
	it := cart.Item{
		ID:        w.ID.String(),
		UserID:    w.UserID,
		CreatedAt: parseTime(w.CreatedAt),
	}
	if w.Listing != nil {
		l := w.Listing.toListing()
		it.Listing = &l
		it.ListingID = l.ID
	}
	return it
}

type orderItemWire struct {
	ID              string          `json:"id"`
	ListingID       string          `json:"listingId"`
	SellerID        string          `json:"sellerId"`
	ProductName     string          `json:"productName"`
	ProductImageURL string          `json:"productImageUrl"`
	Price           decimal.Decimal `json:"price"`
}

type orderWire struct {
	ID              string          `json:"id"`
	BuyerID         string          `json:"buyerId"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
	ShippingAddress string          `json:"shippingAddress"`
	PhoneNumber     string          `json:"phoneNumber"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          string          `json:"status"`
	OrderItems      []orderItemWire `json:"orderItems"`
	CreatedAt       string          `json:"createdAt"`
	UpdatedAt       string          `json:"updatedAt"`
}

func (w orderWire) toOrder() order.Order {
	o := order.Order{
		ID:              w.ID,
		BuyerID:         w.BuyerID,
		TotalAmount:     w.TotalAmount,
		ShippingFee:     w.ShippingFee,
		ShippingAddress: w.ShippingAddress,
		PhoneNumber:     w.PhoneNumber,
		PaymentMethod:   order.PaymentMethod(w.PaymentMethod),
		Status:          order.Status(w.Status),
		CreatedAt:       parseTime(w.CreatedAt),
		UpdatedAt:       parseTime(w.UpdatedAt),
		Items:           make([]order.Item, 0, len(w.OrderItems)),
	}
	for _, it := range w.OrderItems {
		o.Items = append(o.Items, order.Item(it))
	}
	return o
}
