package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agronet/identity-api/internal/auth"
	"github.com/agronet/identity-api/internal/database"
	"github.com/agronet/identity-api/internal/metrics"
	"github.com/agronet/identity-api/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext extracts the authenticated user from the request context
func UserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a copy of the request carrying the given user.
// Exported for handler tests.
func WithUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

// Session creates the request-gating middleware. It trusts only a
// validly-signed, unexpired session cookie, then re-fetches the user
// record so a deleted account is rejected even while its token is
// still unexpired.
func Session(users database.UserRepositoryInterface, tokens *auth.TokenIssuer, cookies auth.CookiePolicy, collector *metrics.Collector, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := cookies.Read(r)
			if !ok {
				collector.RecordSessionVerification("no_token")
				respondAuthError(w, "No token.")
				return
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				collector.RecordSessionVerification("invalid_token")
				logger.Debug("session_token_rejected", zap.Error(err))
				respondAuthError(w, "Invalid token.")
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				collector.RecordSessionVerification("invalid_token")
				respondAuthError(w, "Invalid token.")
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if errors.Is(err, database.ErrNotFound) {
				collector.RecordSessionVerification("user_not_found")
				respondAuthError(w, "User not found.")
				return
			}
			if err != nil {
				logger.Error("session_user_lookup_failed", zap.Error(err))
				respondError(w, http.StatusInternalServerError, "Server error")
				return
			}

			collector.RecordSessionVerification("ok")

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
