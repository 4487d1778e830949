package auth

import (
	"net/http"
	"time"
)

// DefaultSessionCookieName is used when no cookie name is configured.
const DefaultSessionCookieName = "session"

// CookiePolicy holds the attributes of the session cookie. Set and
// Clear must use identical attributes: most HTTP clients silently
// ignore a clear whose attributes do not match the original cookie.
type CookiePolicy struct {
	Name     string
	TTL      time.Duration
	Secure   bool
	SameSite http.SameSite
	Path     string
}

// NewCookiePolicy builds the session cookie policy for a deployment.
// Production gets Secure + SameSite=None so the cookie survives
// cross-site redirects from identity providers; development stays on
// plain HTTP with SameSite=Lax.
func NewCookiePolicy(name string, ttl time.Duration, production bool) CookiePolicy {
	if name == "" {
		name = DefaultSessionCookieName
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	p := CookiePolicy{
		Name:     name,
		TTL:      ttl,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if production {
		p.SameSite = http.SameSiteNoneMode
	}
	return p
}

// Set attaches the session token to the response as an HTTP-only cookie
// whose lifetime matches the token TTL.
func (p CookiePolicy) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    token,
		Path:     p.Path,
		MaxAge:   int(p.TTL.Seconds()),
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	})
}

// Clear expires the session cookie with attributes matching Set.
func (p CookiePolicy) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    "",
		Path:     p.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: p.SameSite,
	})
}

// Read returns the session token carried by the request, if any.
func (p CookiePolicy) Read(r *http.Request) (string, bool) {
	c, err := r.Cookie(p.Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
