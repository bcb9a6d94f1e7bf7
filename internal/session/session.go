package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid bearer token")
	ErrExpired      = errors.New("session expired")
)

const (
	RoleAdmin  = "ADMIN"
	RoleUser   = "USER"
	rolePrefix = "ROLE_"
)

// Session is the client's view of an identity-service token. Signatures are
// not checked here; the identity service and the backends it fronts own that.
type Session struct {
	Token     string
	SubjectID string
	UserID    string
	Roles     map[string]struct{}
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s Session) HasRole(role string) bool {
	_, ok := s.Roles[normalizeRole(role)]
	return ok
}

func (s Session) IsAdmin() bool { return s.HasRole(RoleAdmin) }

// RoleList returns the roles in sorted order.
func (s Session) RoleList() []string {
	out := make([]string, 0, len(s.Roles))
	for r := range s.Roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Decode reads subject, roles and expiry from a bearer token.
func Decode(token string) (Session, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Session{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Session{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return Session{}, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}

	s := Session{
		Token:     token,
		SubjectID: sub,
		UserID:    stringClaim(claims, "userId"),
		Roles:     rolesFrom(claims),
		ExpiresAt: exp.Time.UTC(),
	}
	return s, nil
}

func rolesFrom(claims jwt.MapClaims) map[string]struct{} {
	roles := map[string]struct{}{}
	add := func(r string) {
		if r = normalizeRole(r); r != "" {
			roles[r] = struct{}{}
		}
	}

	if scope, ok := claims["scope"].(string); ok {
		for _, r := range strings.Fields(scope) {
			add(r)
		}
	}
	if list, ok := claims["roles"].([]any); ok {
		for _, r := range list {
			if s, ok := r.(string); ok {
				add(s)
			}
		}
	}
	if r, ok := claims["role"].(string); ok {
		add(r)
	}
	return roles
}

func normalizeRole(r string) string {
	r = strings.ToUpper(strings.TrimSpace(r))
	return strings.TrimPrefix(r, rolePrefix)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
