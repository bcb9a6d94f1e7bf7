package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/cart"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/order"
)

var (
	// ErrEmptyCart is a guard: the caller should send the user back to the
	// cart view instead of rendering the form.
	ErrEmptyCart        = errors.New("cart is empty")
	ErrNothingToOrder   = errors.New("no orderable items in cart")
	ErrSubmitInProgress = errors.New("checkout already in progress")
)

const (
	ReasonNotHydrated = "listing details unavailable"
	ReasonGone        = "listing no longer available"
)

type Cart interface {
	Items() []cart.Item
	Clear()
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, req order.CheckoutRequest) (order.Order, error)
}

// ListingVerifier reports whether a listing still exists server-side.
type ListingVerifier interface {
	ListingExists(ctx context.Context, listingID string) (bool, error)
}

type Config struct {
	ShippingFee    decimal.Decimal
	PaymentMethods []order.PaymentMethod
}

type Line struct {
	ItemID    string            `json:"itemId"`
	ListingID string            `json:"listingId"`
	Name      string            `json:"name,omitempty"`
	Condition listing.Condition `json:"condition,omitempty"`
	Price     decimal.Decimal   `json:"price"`
}

type Dropped struct {
	ItemID    string `json:"itemId"`
	ListingID string `json:"listingId,omitempty"`
	Reason    string `json:"reason"`
}

type Summary struct {
	Lines          []Line                `json:"lines"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	ShippingFee    decimal.Decimal       `json:"shippingFee"`
	Total          decimal.Decimal       `json:"total"`
	Dropped        []Dropped             `json:"dropped,omitempty"`
	PaymentMethods []order.PaymentMethod `json:"paymentMethods"`
}

type Result struct {
	Order   order.Order `json:"order"`
	Dropped []Dropped   `json:"dropped,omitempty"`
}

type Flow struct {
	cart     Cart
	orders   OrderCreator
	sessions cart.SessionSource
	verifier ListingVerifier
	cfg      Config
	logger   *slog.Logger

	mu         sync.Mutex
	submitting bool
	draft      *Form
}

// NewFlow wires a checkout flow. verifier may be nil, in which case only
// unhydrated cart lines are dropped from the order.
func NewFlow(c Cart, orders OrderCreator, sessions cart.SessionSource, verifier ListingVerifier, cfg Config, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		cart:     c,
		orders:   orders,
		sessions: sessions,
		verifier: verifier,
		cfg:      cfg,
		logger:   logger.With("component", "checkout"),
	}
}

// Begin returns the summary shown next to the checkout form.
func (f *Flow) Begin() (Summary, error) {
	items := f.cart.Items()
	if len(items) == 0 {
		return Summary{}, ErrEmptyCart
	}

	s := Summary{
		Subtotal:       decimal.Zero,
		ShippingFee:    f.cfg.ShippingFee,
		PaymentMethods: f.cfg.PaymentMethods,
	}
	for _, it := range items {
		if it.Listing == nil {
			s.Dropped = append(s.Dropped, Dropped{ItemID: it.ID, ListingID: it.ListingID, Reason: ReasonNotHydrated})
			continue
		}
		s.Lines = append(s.Lines, Line{
			ItemID:    it.ID,
			ListingID: it.ListingRef(),
			Name:      it.Listing.ProductName,
			Condition: it.Listing.Condition,
			Price:     it.Listing.Price,
		})
		s.Subtotal = s.Subtotal.Add(it.Listing.Price)
	}
	s.Total = s.Subtotal.Add(f.cfg.ShippingFee)
	return s, nil
}

// Draft returns the last form whose submission failed, so the user does not
// have to re-enter it.
func (f *Flow) Draft() (Form, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return Form{}, false
	}
	return *f.draft, true
}

// Submit places the order for the current cart. The cart is cleared only
// after order creation succeeds; on any failure it is left as it was.
func (f *Flow) Submit(ctx context.Context, form Form) (Result, error) {
	sess, ok := f.sessions.Current()
	if !ok {
		return Result{}, cart.ErrAuthRequired
	}

	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return Result{}, ErrSubmitInProgress
	}
	f.submitting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	items := f.cart.Items()
	if len(items) == 0 {
		return Result{}, ErrEmptyCart
	}
	if err := form.Validate(f.cfg.PaymentMethods); err != nil {
		f.keepDraft(form)
		return Result{}, err
	}

	ids, dropped := f.orderable(ctx, items)
	if len(ids) == 0 {
		f.keepDraft(form)
		return Result{Dropped: dropped}, ErrNothingToOrder
	}

	req := order.CheckoutRequest{
		BuyerID:         sess.UserID,
		ShippingAddress: strings.TrimSpace(form.ShippingAddress),
		PhoneNumber:     strings.TrimSpace(form.PhoneNumber),
		PaymentMethod:   form.PaymentMethod,
		ListingIDs:      ids,
	}

	placed, err := f.orders.CreateOrder(ctx, req)
	if err != nil {
		f.keepDraft(form)
		f.logger.WarnContext(ctx, "order creation failed", "buyer_id", sess.UserID, "listings", len(ids), "error", err)
		return Result{Dropped: dropped}, fmt.Errorf("create order: %w", err)
	}

	if placed.Status == "" {
		placed.Status = order.StatusPending
	}

	f.cart.Clear()
	f.mu.Lock()
	f.draft = nil
	f.mu.Unlock()

	f.logger.InfoContext(ctx, "order placed", "order_id", placed.ID, "buyer_id", sess.UserID, "listings", len(ids), "dropped", len(dropped))
	return Result{Order: placed, Dropped: dropped}, nil
}

func (f *Flow) orderable(ctx context.Context, items []cart.Item) ([]string, []Dropped) {
	var (
		ids     []string
		dropped []Dropped
	)
	for _, it := range items {
		if it.Listing == nil {
			dropped = append(dropped, Dropped{ItemID: it.ID, ListingID: it.ListingID, Reason: ReasonNotHydrated})
			continue
		}
		id := it.ListingRef()
		if f.verifier != nil {
			exists, err := f.verifier.ListingExists(ctx, id)
			if err != nil {
				// Let the trade service have the final word.
				f.logger.WarnContext(ctx, "listing check failed", "listing_id", id, "error", err)
			} else if !exists {
				dropped = append(dropped, Dropped{ItemID: it.ID, ListingID: id, Reason: ReasonGone})
				continue
			}
		}
		ids = append(ids, id)
	}
	return ids, dropped
}

func (f *Flow) keepDraft(form Form) {
	f.mu.Lock()
	f.draft = &form
	f.mu.Unlock()
}
