package handlers

import (
	"net/http"
	"strings"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/http/dto"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/middleware"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/storefront"
)

type SessionHandler struct {
	reg      *storefront.Registry
	identity *clients.IdentityClient
}

func NewSessionHandler(reg *storefront.Registry, identity *clients.IdentityClient) *SessionHandler {
	return &SessionHandler{reg: reg, identity: identity}
}

// Login signs in and returns the token together with the cart. A cart that
// failed to load does not fail the login; its error is reported in the body.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "username and password are required")
		return
	}

	sf, res, err := h.reg.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	profile, _ := sf.Session.Profile()
	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Token:   res.Session.Token,
		Session: dto.NewSessionView(res.Session, &profile),
		Cart:    dto.NewCartView(res.Cart, res.CartErr),
	})
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req clients.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	fields := map[string]string{}
	if len(strings.TrimSpace(req.Username)) < 3 {
		fields["username"] = "Username must be at least 3 characters"
	}
	if len(req.Password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	}
	if len(fields) > 0 {
		writeFieldErrors(w, r, fields)
		return
	}

	profile, err := h.identity.Register(r.Context(), req)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

// Current is mounted behind RequireStorefront.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sf := storefrontFrom(r.Context())
	sess, ok := sf.Active()
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	profile, _ := sf.Session.Profile()
	writeJSON(w, http.StatusOK, dto.NewSessionView(sess, &profile))
}

// Logout always succeeds for a caller that presents a token, known or not.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetBearerToken(r.Context())
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
		return
	}
	h.reg.Logout(token)
	w.WriteHeader(http.StatusNoContent)
}
