package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS allows the configured origins. A single "*" reflects any origin back,
// which browsers accept together with credentials.
func CORS(allowOrigins []string) func(http.Handler) http.Handler {
	allowAll := len(allowOrigins) == 1 && allowOrigins[0] == "*"

	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", HeaderCorrelationID},
		ExposedHeaders:   []string{HeaderCorrelationID},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if allowAll {
		opts.AllowOriginFunc = func(_ *http.Request, origin string) bool { return origin != "" }
	} else {
		opts.AllowOriginFunc = func(_ *http.Request, origin string) bool {
			return originAllowed(origin, allowOrigins)
		}
	}
	return cors.Handler(opts)
}

func originAllowed(origin string, allow []string) bool {
	for _, a := range allow {
		if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(origin)) {
			return true
		}
	}
	return false
}
