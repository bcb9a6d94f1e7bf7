package clients

import (
	"context"
	"errors"
	"net/http"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/session"
)

type IdentityClient struct{ c *Client }

func NewIdentityClient(c *Client) *IdentityClient { return &IdentityClient{c: c} }

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResult struct {
	Token         string `json:"token"`
	Authenticated bool   `json:"authenticated"`
}

// RegisterRequest is the sign-up payload of the identity service.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Dob       string `json:"dob,omitempty"`
}

// Login exchanges credentials for a bearer token.
func (ic *IdentityClient) Login(ctx context.Context, username, password string) (string, error) {
	res, err := call[authResult](ctx, ic.c, http.MethodPost, "/identity/auth/token", "", credentials{username, password})
	if err != nil {
		return "", err
	}
	if res.Token == "" {
		return "", errors.New("identity: token missing from response")
	}
	return res.Token, nil
}

func (ic *IdentityClient) MyInfo(ctx context.Context, token string) (session.Profile, error) {
	return call[session.Profile](WithBearer(ctx, token), ic.c, http.MethodGet, "/identity/users/my-info", "", nil)
}

func (ic *IdentityClient) Register(ctx context.Context, req RegisterRequest) (session.Profile, error) {
	return call[session.Profile](ctx, ic.c, http.MethodPost, "/identity/users", "", req)
}
