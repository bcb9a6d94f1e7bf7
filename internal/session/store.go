package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Profile is the identity service's my-info payload.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Dob       string `json:"dob,omitempty"`
}

type Identity interface {
	Login(ctx context.Context, username, password string) (string, error)
	MyInfo(ctx context.Context, token string) (Profile, error)
}

// Store holds at most one authenticated session.
type Store struct {
	identity Identity
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.RWMutex
	current *Session
	profile Profile
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(identity Identity, opts ...Option) *Store {
	s := &Store{identity: identity, now: time.Now, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("component", "session")
	return s
}

func (s *Store) Login(ctx context.Context, username, password string) (Session, error) {
	token, err := s.identity.Login(ctx, username, password)
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	return s.Resume(ctx, token)
}

// Resume establishes a session from a token issued earlier, for example
// after the BFF restarted or the browser reloaded.
func (s *Store) Resume(ctx context.Context, token string) (Session, error) {
	sess, err := Decode(token)
	if err != nil {
		return Session{}, err
	}
	if sess.Expired(s.now()) {
		return Session{}, ErrExpired
	}

	profile, err := s.identity.MyInfo(ctx, sess.Token)
	if err != nil {
		return Session{}, fmt.Errorf("load profile: %w", err)
	}
	switch {
	case profile.ID != "":
		sess.UserID = profile.ID
	case sess.UserID == "":
		sess.UserID = sess.SubjectID
	}

	s.mu.Lock()
	s.current = &sess
	s.profile = profile
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "session started", "user_id", sess.UserID, "expires_at", sess.ExpiresAt)
	return sess, nil
}

// Current returns the session if one exists and has not expired.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.Expired(s.now()) {
		return Session{}, false
	}
	return *s.current, true
}

// Expired reports whether a session was established and has since expired.
func (s *Store) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil && s.current.Expired(s.now())
}

func (s *Store) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile, s.current != nil
}

func (s *Store) Logout() {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.profile = Profile{}
	s.mu.Unlock()

	if had {
		s.logger.Info("session ended")
	}
}
