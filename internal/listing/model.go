package listing

import (
	"time"

	"github.com/shopspring/decimal"
)

type Condition string

const (
	ConditionNew     Condition = "NEW"
	ConditionLikeNew Condition = "LIKE_NEW"
	ConditionUsed    Condition = "USED"
	ConditionDamaged Condition = "DAMAGED"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionUsed, ConditionDamaged:
		return true
	default:
		return false
	}
}

type Image struct {
	ID          int64  `json:"id"`
	ImageURL    string `json:"imageUrl"`
	IsThumbnail bool   `json:"isThumbnail"`
}

// Listing is a seller's for-sale instance of a catalog product.
type Listing struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	ProductID        string          `json:"productId"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int             `json:"quantity"`
	Condition        Condition       `json:"condition"`
	Description      string          `json:"description,omitempty"`
	Status           string          `json:"status,omitempty"`
	ProductName      string          `json:"productName,omitempty"`
	ProductThumbnail string          `json:"productThumbnail,omitempty"`
	Series           string          `json:"series,omitempty"`
	Manufacturer     string          `json:"manufacturer,omitempty"`
	Images           []Image         `json:"images,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// Page is the paginated envelope returned by the listings endpoint.
type Page struct {
	CurrentPage   int       `json:"currentPage"`
	PageSize      int       `json:"pageSize"`
	TotalPages    int       `json:"totalPages"`
	TotalElements int64     `json:"totalElements"`
	Data          []Listing `json:"data"`
}

// CreateRequest is the seller upload payload.
type CreateRequest struct {
	ProductID   string          `json:"productId"`
	UserID      string          `json:"userId"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Condition   Condition       `json:"condition"`
	Description string          `json:"description,omitempty"`
	ImageURLs   []string        `json:"imageUrls,omitempty"`
}
