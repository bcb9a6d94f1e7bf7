package storefront

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/session"
)

// Registry maps bearer tokens to storefronts. A token the registry has not
// seen (after a restart, or issued to another instance) is resumed on first
// use.
type Registry struct {
	factory func() *Storefront
	logger  *slog.Logger

	mu      sync.RWMutex
	byToken map[string]*Storefront
	resumes singleflight.Group
}

func NewRegistry(factory func() *Storefront, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		factory: factory,
		logger:  logger.With("component", "registry"),
		byToken: map[string]*Storefront{},
	}
}

// Login signs in with fresh credentials and registers the new storefront
// under the issued token.
func (r *Registry) Login(ctx context.Context, username, password string) (*Storefront, LoginResult, error) {
	sf := r.factory()
	res, err := sf.Login(ctx, username, password)
	if err != nil {
		return nil, LoginResult{}, err
	}
	r.mu.Lock()
	r.byToken[res.Session.Token] = sf
	r.mu.Unlock()
	return sf, res, nil
}

// Get returns the storefront for token, resuming it when unknown. An expired
// session is evicted and reported as session.ErrExpired.
func (r *Registry) Get(ctx context.Context, token string) (*Storefront, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, session.ErrInvalidToken
	}

	r.mu.RLock()
	sf, ok := r.byToken[token]
	r.mu.RUnlock()
	if ok {
		if _, active := sf.Active(); active {
			return sf, nil
		}
		r.evict(token)
		return nil, session.ErrExpired
	}

	// The resume is shared by every caller with this token, so it must not
	// die with the first caller's request. Each caller still stops waiting
	// when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := r.resumes.DoChan(token, func() (any, error) {
		r.mu.RLock()
		existing, ok := r.byToken[token]
		r.mu.RUnlock()
		if ok {
			return existing, nil
		}

		sf := r.factory()
		res, err := sf.Resume(shared, token)
		if err != nil {
			return nil, err
		}
		if res.CartErr != nil {
			r.logger.WarnContext(shared, "resumed session without cart", "user_id", res.Session.UserID, "error", res.CartErr)
		}
		r.mu.Lock()
		r.byToken[token] = sf
		r.mu.Unlock()
		return sf, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Storefront), nil
	}
}

// Logout ends the session for token. Unknown tokens are ignored.
func (r *Registry) Logout(token string) {
	r.mu.Lock()
	sf, ok := r.byToken[token]
	delete(r.byToken, token)
	r.mu.Unlock()
	if ok {
		sf.Logout()
	}
}

// Sweep evicts every storefront whose session has lapsed and returns how many
// were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	var expired []*Storefront
	for tok, sf := range r.byToken {
		if _, ok := sf.Session.Current(); !ok {
			expired = append(expired, sf)
			delete(r.byToken, tok)
		}
	}
	r.mu.Unlock()

	for _, sf := range expired {
		sf.Logout()
	}
	return len(expired)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byToken)
}

// Run sweeps on every tick until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("evicted expired sessions", "count", n)
			}
		}
	}
}

func (r *Registry) evict(token string) {
	r.mu.Lock()
	sf, ok := r.byToken[token]
	delete(r.byToken, token)
	r.mu.Unlock()
	if ok {
		sf.Logout()
	}
}

// IsAuthError reports whether err means the caller must sign in again.
func IsAuthError(err error) bool {
	return errors.Is(err, session.ErrExpired) || errors.Is(err, session.ErrInvalidToken)
}
