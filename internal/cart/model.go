package cart

import (
	"time"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
)

// Item is one cart line. Listing is the server's snapshot of the referenced
// listing and may be absent until it hydrates.
type Item struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId,omitempty"`
	ListingID string           `json:"listingId"`
	Listing   *listing.Listing `json:"listing,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// ListingRef returns the referenced listing id, preferring the snapshot.
func (it Item) ListingRef() string {
	if it.Listing != nil && it.Listing.ID != "" {
		return it.Listing.ID
	}
	return it.ListingID
}

type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
