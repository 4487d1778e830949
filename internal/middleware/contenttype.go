package middleware

import (
	"net/http"
	"strings"
)

// ContentType validates Content-Type headers for requests with bodies.
// The OAuth routes are GET-only redirects, so only the JSON endpoints
// pass through here with a body.
func ContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPatch || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")

			// Logout is a POST with no body at all.
			if contentType == "" && r.ContentLength > 0 {
				http.Error(w, "Content-Type header is required", http.StatusBadRequest)
				return
			}

			if contentType != "" && !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
