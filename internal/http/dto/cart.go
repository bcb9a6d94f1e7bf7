package dto

type AddCartItemRequest struct {
	ListingID string `json:"listingId"`
}
