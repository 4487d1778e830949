package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS builds credentials-aware CORS middleware for the given frontend
// origins. AllowCredentials is required because the session rides in a
// cookie, which also rules out a wildcard origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler
}
