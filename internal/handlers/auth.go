package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/agronet/identity-api/internal/auth"
	"github.com/agronet/identity-api/internal/database"
	"github.com/agronet/identity-api/internal/metrics"
	"github.com/agronet/identity-api/internal/middleware"
	"github.com/agronet/identity-api/internal/models"
	"github.com/agronet/identity-api/internal/oauth"
	"github.com/agronet/identity-api/internal/queue"
	"github.com/agronet/identity-api/internal/validation"
)

// stateCookieName carries the OAuth anti-forgery state between the
// redirect and the callback.
const stateCookieName = "oauth_state"

// uniformLoginError is the single message returned for every login
// failure. Not-found, wrong-method and bad-password are kept distinct
// internally but must be indistinguishable on the wire.
const uniformLoginError = "Invalid credentials"

// AuthHandler ties the credential, resolver, token and cookie pieces
// into the signup, login, OAuth, logout and verify flows.
type AuthHandler struct {
	resolver    *auth.Resolver
	tokens      *auth.TokenIssuer
	cookies     auth.CookiePolicy
	providers   oauth.Registry
	frontendURL string
	audit       queue.AuditPublisher
	collector   *metrics.Collector
	logger      *zap.Logger
}

// AuthHandlerConfig collects the dependencies of NewAuthHandler.
// Audit and Collector may be nil.
type AuthHandlerConfig struct {
	Resolver    *auth.Resolver
	Tokens      *auth.TokenIssuer
	Cookies     auth.CookiePolicy
	Providers   oauth.Registry
	FrontendURL string
	Audit       queue.AuditPublisher
	Collector   *metrics.Collector
	Logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		resolver:    cfg.Resolver,
		tokens:      cfg.Tokens,
		cookies:     cfg.Cookies,
		providers:   cfg.Providers,
		frontendURL: cfg.FrontendURL,
		audit:       cfg.Audit,
		collector:   cfg.Collector,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes. The session middleware
// gates /verify only; every other route is an entry point.
func (h *AuthHandler) RegisterRoutes(r *mux.Router, session func(http.Handler) http.Handler) {
	r.HandleFunc("/signup", h.Signup).Methods("POST")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/oauth/{provider}", h.OAuthStart).Methods("GET")
	r.HandleFunc("/oauth/{provider}/callback", h.OAuthCallback).Methods("GET")
	r.HandleFunc("/logout", h.Logout).Methods("POST")
	r.Handle("/verify", session(http.HandlerFunc(h.Verify))).Methods("GET")
}

// SignupRequest is the local account creation payload.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the local login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup creates a local account and starts a session for it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		h.collector.RecordAuthAttempt(metrics.FlowSignup, "validation_failed")
		respondMessage(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	email := validation.NormalizeEmail(req.Email)

	user, err := h.resolver.CreateLocal(r.Context(), req.Name, email, req.Password)
	if errors.Is(err, database.ErrDuplicateEmail) {
		h.collector.RecordAuthAttempt(metrics.FlowSignup, "duplicate_email")
		respondMessage(w, http.StatusConflict, "User already exists")
		return
	}
	if err != nil {
		h.collector.RecordAuthAttempt(metrics.FlowSignup, "error")
		h.logger.Error("signup_failed", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	if !h.startSession(w, r, user, metrics.FlowSignup) {
		return
	}

	h.collector.RecordAuthAttempt(metrics.FlowSignup, "ok")
	h.publishAudit(r, queue.NewEvent(queue.EventUserSignup, user.ID, ""))

	respondJSON(w, http.StatusCreated, map[string]string{
		"id":    user.ID.String(),
		"name":  user.Name,
		"email": user.Email,
	})
}

// Login authenticates a local account and starts a session. All
// authentication failures share one status and message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		h.collector.RecordAuthAttempt(metrics.FlowLogin, "validation_failed")
		respondMessage(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	email := validation.NormalizeEmail(req.Email)

	user, err := h.resolver.ResolveLocal(r.Context(), email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			h.collector.RecordAuthAttempt(metrics.FlowLogin, "user_not_found")
		case errors.Is(err, auth.ErrWrongAuthMethod):
			h.collector.RecordAuthAttempt(metrics.FlowLogin, "wrong_auth_method")
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.collector.RecordAuthAttempt(metrics.FlowLogin, "invalid_credentials")
		default:
			h.collector.RecordAuthAttempt(metrics.FlowLogin, "error")
			h.logger.Error("login_failed", zap.Error(err))
			respondMessage(w, http.StatusInternalServerError, "Server error")
			return
		}
		h.logger.Debug("login_rejected", zap.Error(err))
		respondMessage(w, http.StatusUnauthorized, uniformLoginError)
		return
	}

	if !h.startSession(w, r, user, metrics.FlowLogin) {
		return
	}

	h.collector.RecordAuthAttempt(metrics.FlowLogin, "ok")
	h.publishAudit(r, queue.NewEvent(queue.EventUserLogin, user.ID, ""))

	respondJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// OAuthStart redirects to the provider's consent page with a fresh
// anti-forgery state.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers.Get(models.AuthOrigin(mux.Vars(r)["provider"]))
	if !ok {
		respondMessage(w, http.StatusNotFound, "Unknown provider")
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		h.logger.Error("oauth_state_generation_failed", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// OAuthCallback completes the provider flow: state check, code
// exchange, identity resolution, then session start and redirect to
// the frontend. No cookie is set unless resolution fully succeeded.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	providerName := mux.Vars(r)["provider"]
	provider, ok := h.providers.Get(models.AuthOrigin(providerName))
	if !ok {
		respondMessage(w, http.StatusNotFound, "Unknown provider")
		return
	}

	h.clearStateCookie(w)

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.collector.RecordAuthAttempt(metrics.FlowOAuth, "state_mismatch")
		h.logger.Warn("oauth_state_mismatch", zap.String("provider", providerName))
		h.redirectFailure(w, r, "state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.collector.RecordAuthAttempt(metrics.FlowOAuth, "denied")
		h.redirectFailure(w, r, "access_denied")
		return
	}

	profile, err := provider.FetchProfile(r.Context(), code)
	if err != nil {
		h.collector.RecordAuthAttempt(metrics.FlowOAuth, "profile_failed")
		h.logger.Error("oauth_profile_fetch_failed",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		h.redirectFailure(w, r, "profile_unavailable")
		return
	}

	user, err := h.resolver.ResolveFederated(r.Context(), *profile)
	if errors.Is(err, auth.ErrIdentityConflict) {
		h.collector.RecordAuthAttempt(metrics.FlowOAuth, "identity_conflict")
		h.logger.Warn("oauth_identity_conflict", zap.String("provider", providerName))
		h.redirectFailure(w, r, "identity_conflict")
		return
	}
	if err != nil {
		h.collector.RecordAuthAttempt(metrics.FlowOAuth, "error")
		h.logger.Error("oauth_resolution_failed",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		h.redirectFailure(w, r, "server_error")
		return
	}

	if !h.startSession(w, r, user, metrics.FlowOAuth) {
		return
	}

	h.collector.RecordAuthAttempt(metrics.FlowOAuth, "ok")
	h.publishAudit(r, queue.NewEvent(queue.EventOAuthLogin, user.ID, providerName))

	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

// Logout clears the session cookie. The clear must use the exact
// attributes of the login cookie or clients silently keep it.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Best-effort audit: logout itself is not gated.
	if raw, ok := h.cookies.Read(r); ok {
		if claims, err := h.tokens.Verify(raw); err == nil {
			if userID, err := uuid.Parse(claims.Subject); err == nil {
				h.publishAudit(r, queue.NewEvent(queue.EventUserLogout, userID, ""))
			}
		}
	}

	h.cookies.Clear(w)
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

// Verify reports the identity established by the session middleware.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	if user == nil {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "User not found."})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"name": user.Name})
}

// startSession mints a token and attaches the session cookie. Returns
// false after responding if the token could not be issued.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *models.User, flow string) bool {
	token, err := h.tokens.Issue(user.ID.String())
	if err != nil {
		h.collector.RecordAuthAttempt(flow, "error")
		h.logger.Error("token_issue_failed", zap.Error(err))
		if flow == metrics.FlowOAuth {
			h.redirectFailure(w, r, "server_error")
		} else {
			respondMessage(w, http.StatusInternalServerError, "Server error")
		}
		return false
	}

	h.cookies.Set(w, token)
	return true
}

func (h *AuthHandler) redirectFailure(w http.ResponseWriter, r *http.Request, reason string) {
	target, err := url.Parse(h.frontendURL)
	if err != nil {
		respondMessage(w, http.StatusInternalServerError, "Server error")
		return
	}
	target.Path = "/login"
	target.RawQuery = url.Values{"error": {reason}}.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (h *AuthHandler) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) publishAudit(r *http.Request, event *queue.Event) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Publish(r.Context(), event); err != nil {
		h.logger.Warn("audit_publish_failed",
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}
