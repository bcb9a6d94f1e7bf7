package middleware

import (
	"context"
	"net/http"
	"strings"
)

// BearerToken stores the token from an "Authorization: Bearer" header in the
// request context. Requests without one pass through untouched; routes that
// need a session enforce it themselves.
func BearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := parseBearer(r.Header.Get("Authorization")); tok != "" {
			r = r.WithContext(context.WithValue(r.Context(), ctxBearerToken, tok))
		}
		next.ServeHTTP(w, r)
	})
}

func GetBearerToken(ctx context.Context) string {
	if v := ctx.Value(ctxBearerToken); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func parseBearer(h string) string {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}
