package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/session"
)

var (
	ErrAuthRequired = errors.New("authentication required")
	// ErrItemNotFound means the line is not in the caller's cart. The trade
	// service deletes lines by id alone, so foreign ids never reach it.
	ErrItemNotFound = errors.New("cart item not found")
)

type Backend interface {
	GetCart(ctx context.Context, userID string) ([]Item, error)
	AddItem(ctx context.Context, userID, listingID string) (Item, error)
	RemoveItem(ctx context.Context, itemID string) error
}

type SessionSource interface {
	Current() (session.Session, bool)
}

// Store is the authenticated user's cart, reconciled against the trade
// service. The lock is never held across a backend call; every mutation that
// waits on the network checks the epoch afterwards so that a response landing
// after Clear does not repopulate the cart.
type Store struct {
	backend  Backend
	sessions SessionSource
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	userID  string
	items   []Item
	loadErr error
	epoch   uint64
}

func NewStore(backend Backend, sessions SessionSource, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend:  backend,
		sessions: sessions,
		logger:   logger.With("component", "cart"),
	}
}

// Load fetches the server cart for userID and replaces local state wholesale.
// On failure the cart is left empty and the error is returned; there is no
// retry.
func (s *Store) Load(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.state = StateLoading
	s.userID = userID
	s.items = nil
	s.loadErr = nil
	s.mu.Unlock()

	items, err := s.backend.GetCart(ctx, userID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.logger.DebugContext(ctx, "discarding stale cart load", "user_id", userID)
		return nil
	}
	if err != nil {
		s.state = StateEmpty
		s.loadErr = err
		s.logger.WarnContext(ctx, "cart load failed", "user_id", userID, "error", err)
		return fmt.Errorf("load cart: %w", err)
	}
	s.items = append([]Item(nil), items...)
	s.state = StateLoaded
	return nil
}

// Refresh reloads the cart for the current session's user.
func (s *Store) Refresh(ctx context.Context) error {
	sess, ok := s.sessions.Current()
	if !ok {
		return ErrAuthRequired
	}
	return s.Load(ctx, sess.UserID)
}

// AddItem adds a listing to the cart. The item returned by the server is
// appended without refetching the whole cart.
func (s *Store) AddItem(ctx context.Context, listingID string) (Item, error) {
	sess, ok := s.sessions.Current()
	if !ok {
		return Item{}, ErrAuthRequired
	}

	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	item, err := s.backend.AddItem(ctx, sess.UserID, listingID)
	if err != nil {
		return Item{}, fmt.Errorf("add listing %s to cart: %w", listingID, err)
	}
	if item.ListingID == "" {
		item.ListingID = listingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		// Cart was cleared or reloaded meanwhile; the next load reflects the
		// server's view including this item.
		return item, nil
	}
	s.items = upsert(s.items, item)
	s.state = StateLoaded
	return item, nil
}

// RemoveItem deletes a cart line on the server and only then drops it
// locally. Only lines held in this cart can be removed.
func (s *Store) RemoveItem(ctx context.Context, itemID string) error {
	if _, ok := s.sessions.Current(); !ok {
		return ErrAuthRequired
	}

	s.mu.Lock()
	held := indexOf(s.items, itemID) >= 0
	s.mu.Unlock()
	if !held {
		return ErrItemNotFound
	}

	if err := s.backend.RemoveItem(ctx, itemID); err != nil {
		return fmt.Errorf("remove cart item %s: %w", itemID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = without(s.items, itemID)
	if len(s.items) == 0 && s.state == StateLoaded {
		s.state = StateEmpty
	}
	return nil
}

// Clear empties local state. The server cart is not touched.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.items = nil
	s.loadErr = nil
	s.state = StateEmpty
}

// Total sums the hydrated listing prices; unhydrated lines count as zero.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.items)
}

func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error of the last failed load, if the cart is still in the
// state that load left it in.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// Snapshot is a consistent read of the cart.
type Snapshot struct {
	State State           `json:"state"`
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := append([]Item{}, s.items...)
	return Snapshot{State: s.state, Items: items, Total: total(items)}
}

func total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if it.Listing == nil {
			continue
		}
		sum = sum.Add(it.Listing.Price)
	}
	return sum
}

func upsert(items []Item, item Item) []Item {
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			return items
		}
	}
	return append(items, item)
}

func indexOf(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func without(items []Item, id string) []Item {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
