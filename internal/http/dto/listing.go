package dto

import (
	"github.com/shopspring/decimal"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
)

// CreateListingRequest is the seller upload form. The seller is always the
// signed-in user.
type CreateListingRequest struct {
	ProductID   string            `json:"productId"`
	Price       decimal.Decimal   `json:"price"`
	Quantity    int               `json:"quantity"`
	Condition   listing.Condition `json:"condition"`
	Description string            `json:"description"`
	ImageURLs   []string          `json:"imageUrls"`
}

// Validate returns field messages, or nil when the request is acceptable.
func (r CreateListingRequest) Validate() map[string]string {
	fields := map[string]string{}
	if r.ProductID == "" {
		fields["productId"] = "Product is required"
	}
	if !r.Price.IsPositive() {
		fields["price"] = "Price must be greater than zero"
	}
	if r.Quantity < 1 {
		fields["quantity"] = "Quantity must be at least 1"
	}
	if !r.Condition.Valid() {
		fields["condition"] = "Condition must be one of NEW, LIKE_NEW, USED, DAMAGED"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (r CreateListingRequest) ToCreate(userID string) listing.CreateRequest {
	return listing.CreateRequest{
		ProductID:   r.ProductID,
		UserID:      userID,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Condition:   r.Condition,
		Description: r.Description,
		ImageURLs:   r.ImageURLs,
	}
}
