package dto

import (
	"time"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/cart"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/session"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionView struct {
	UserID    string           `json:"userId"`
	Roles     []string         `json:"roles"`
	IsAdmin   bool             `json:"isAdmin"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Profile   *session.Profile `json:"profile,omitempty"`
}

func NewSessionView(s session.Session, p *session.Profile) SessionView {
	return SessionView{
		UserID:    s.UserID,
		Roles:     s.RoleList(),
		IsAdmin:   s.IsAdmin(),
		ExpiresAt: s.ExpiresAt,
		Profile:   p,
	}
}

type LoginResponse struct {
	Token   string      `json:"token"`
	Session SessionView `json:"session"`
	Cart    CartView    `json:"cart"`
}

// CartView is a cart snapshot plus the error of its last failed load, so a
// client can tell an empty cart from one that could not be fetched.
type CartView struct {
	cart.Snapshot
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

func NewCartView(s cart.Snapshot, loadErr error) CartView {
	v := CartView{Snapshot: s, Count: len(s.Items)}
	if loadErr != nil {
		v.Error = loadErr.Error()
	}
	return v
}
