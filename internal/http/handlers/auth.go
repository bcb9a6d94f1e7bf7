package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/middleware"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/storefront"
)

type ctxKey struct{}

const msgAuthRequired = "authentication required"

// RequireStorefront resolves the bearer token to a live storefront and puts
// it in the request context. Missing, invalid or expired sessions get 401.
func RequireStorefront(reg *storefront.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := middleware.GetBearerToken(r.Context())
			if token == "" {
				writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
				return
			}
			sf, err := reg.Get(r.Context(), token)
			if err != nil {
				if storefront.IsAuthError(err) || rejectedByIdentity(err) {
					writeError(w, r, http.StatusUnauthorized, msgAuthRequired)
					return
				}
				writeUpstreamError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKey{}, sf)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func storefrontFrom(ctx context.Context) *storefront.Storefront {
	sf, _ := ctx.Value(ctxKey{}).(*storefront.Storefront)
	return sf
}

func rejectedByIdentity(err error) bool {
	var apiErr *clients.APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}
