package storefront

import (
	"context"
	"log/slog"
	"time"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/cart"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/checkout"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/order"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/session"
)

// Upstreams are the services a storefront talks to. Verifier may be nil.
type Upstreams struct {
	Identity session.Identity
	Cart     cart.Backend
	Orders   checkout.OrderCreator
	Verifier checkout.ListingVerifier
}

// Storefront is one signed-in user's state: session, cart and checkout.
type Storefront struct {
	Session  *session.Store
	Cart     *cart.Store
	Checkout *checkout.Flow
}

// LoginResult carries the cart as it stood right after sign-in. CartErr is
// set when the cart could not be loaded; the session is valid regardless.
type LoginResult struct {
	Session session.Session
	Cart    cart.Snapshot
	CartErr error
}

func New(up Upstreams, cfg checkout.Config, logger *slog.Logger, now func() time.Time) *Storefront {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}

	sessions := session.NewStore(up.Identity, session.WithClock(now), session.WithLogger(logger))
	authed := withSessionToken{sessions: sessions, cart: up.Cart, orders: up.Orders, verifier: up.Verifier}

	carts := cart.NewStore(authed, sessions, logger)
	var verifier checkout.ListingVerifier
	if up.Verifier != nil {
		verifier = authed
	}
	flow := checkout.NewFlow(carts, authed, sessions, verifier, cfg, logger)

	return &Storefront{Session: sessions, Cart: carts, Checkout: flow}
}

func (s *Storefront) Login(ctx context.Context, username, password string) (LoginResult, error) {
	sess, err := s.Session.Login(ctx, username, password)
	if err != nil {
		return LoginResult{}, err
	}
	return s.afterSignIn(ctx, sess), nil
}

// Resume restores a session from a token and reloads the server cart.
func (s *Storefront) Resume(ctx context.Context, token string) (LoginResult, error) {
	sess, err := s.Session.Resume(ctx, token)
	if err != nil {
		return LoginResult{}, err
	}
	return s.afterSignIn(ctx, sess), nil
}

func (s *Storefront) afterSignIn(ctx context.Context, sess session.Session) LoginResult {
	res := LoginResult{Session: sess}
	if err := s.Cart.Load(ctx, sess.UserID); err != nil {
		res.CartErr = err
	}
	res.Cart = s.Cart.Snapshot()
	return res
}

// Logout ends the session and drops the local cart. The server cart stays.
func (s *Storefront) Logout() {
	s.Session.Logout()
	s.Cart.Clear()
}

// Active returns the current session. An expired session clears the cart the
// first time it is noticed.
func (s *Storefront) Active() (session.Session, bool) {
	if sess, ok := s.Session.Current(); ok {
		return sess, true
	}
	if s.Session.Expired() {
		s.Cart.Clear()
	}
	return session.Session{}, false
}

// withSessionToken forwards upstream calls with the session's bearer token.
type withSessionToken struct {
	sessions *session.Store
	cart     cart.Backend
	orders   checkout.OrderCreator
	verifier checkout.ListingVerifier
}

func (w withSessionToken) ctx(ctx context.Context) context.Context {
	if sess, ok := w.sessions.Current(); ok {
		return clients.WithBearer(ctx, sess.Token)
	}
	return ctx
}

func (w withSessionToken) GetCart(ctx context.Context, userID string) ([]cart.Item, error) {
	return w.cart.GetCart(w.ctx(ctx), userID)
}

func (w withSessionToken) AddItem(ctx context.Context, userID, listingID string) (cart.Item, error) {
	return w.cart.AddItem(w.ctx(ctx), userID, listingID)
}

func (w withSessionToken) RemoveItem(ctx context.Context, itemID string) error {
	return w.cart.RemoveItem(w.ctx(ctx), itemID)
}

func (w withSessionToken) CreateOrder(ctx context.Context, req order.CheckoutRequest) (order.Order, error) {
	return w.orders.CreateOrder(w.ctx(ctx), req)
}

func (w withSessionToken) ListingExists(ctx context.Context, listingID string) (bool, error) {
	return w.verifier.ListingExists(w.ctx(ctx), listingID)
}
