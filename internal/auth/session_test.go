package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewCookiePolicy_DevelopmentAttributes(t *testing.T) {
	t.Parallel()

	p := NewCookiePolicy("session", time.Hour, false)

	if p.Secure {
		t.Error("development cookie must not be Secure")
	}
	if p.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", p.SameSite)
	}
	if p.Path != "/" {
		t.Errorf("Path = %q, want /", p.Path)
	}
}

func TestNewCookiePolicy_ProductionAttributes(t *testing.T) {
	t.Parallel()

	p := NewCookiePolicy("session", time.Hour, true)

	if !p.Secure {
		t.Error("production cookie must be Secure")
	}
	if p.SameSite != http.SameSiteNoneMode {
		t.Errorf("SameSite = %v, want None", p.SameSite)
	}
}

func TestNewCookiePolicy_Defaults(t *testing.T) {
	t.Parallel()

	p := NewCookiePolicy("", 0, false)

	if p.Name != DefaultSessionCookieName {
		t.Errorf("Name = %q, want %q", p.Name, DefaultSessionCookieName)
	}
	if p.TTL != DefaultSessionTTL {
		t.Errorf("TTL = %v, want %v", p.TTL, DefaultSessionTTL)
	}
}

func TestCookiePolicy_SetAndRead(t *testing.T) {
	t.Parallel()

	p := NewCookiePolicy("session", time.Hour, false)

	w := httptest.NewRecorder()
	p.Set(w, "token-value")

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	c := cookies[0]
	if c.Name != "session" || c.Value != "token-value" {
		t.Errorf("cookie = %s=%s, want session=token-value", c.Name, c.Value)
	}
	if !c.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if c.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, want 3600", c.MaxAge)
	}

	r := httptest.NewRequest(http.MethodGet, "/verify", nil)
	r.AddCookie(c)

	got, ok := p.Read(r)
	if !ok || got != "token-value" {
		t.Errorf("Read = %q, %v; want token-value, true", got, ok)
	}
}

func TestCookiePolicy_ReadMissing(t *testing.T) {
	t.Parallel()

	p := NewCookiePolicy("session", time.Hour, false)
	r := httptest.NewRequest(http.MethodGet, "/verify", nil)

	if _, ok := p.Read(r); ok {
		t.Error("Read must report absence when no cookie is set")
	}
}

// Clear must mirror Set's attributes exactly apart from expiry, or
// clients keep the original cookie.
func TestCookiePolicy_ClearMatchesSet(t *testing.T) {
	t.Parallel()

	p := NewCookiePolicy("session", time.Hour, true)

	setRec := httptest.NewRecorder()
	p.Set(setRec, "token-value")
	set := setRec.Result().Cookies()[0]

	clearRec := httptest.NewRecorder()
	p.Clear(clearRec)
	clear := clearRec.Result().Cookies()[0]

	if clear.Name != set.Name {
		t.Errorf("Name mismatch: %q vs %q", clear.Name, set.Name)
	}
	if clear.Path != set.Path {
		t.Errorf("Path mismatch: %q vs %q", clear.Path, set.Path)
	}
	if clear.HttpOnly != set.HttpOnly {
		t.Error("HttpOnly mismatch between set and clear")
	}
	if clear.Secure != set.Secure {
		t.Error("Secure mismatch between set and clear")
	}
	if clear.SameSite != set.SameSite {
		t.Error("SameSite mismatch between set and clear")
	}
	if clear.MaxAge >= 0 {
		t.Errorf("clear MaxAge = %d, want negative", clear.MaxAge)
	}
	if clear.Value != "" {
		t.Errorf("clear Value = %q, want empty", clear.Value)
	}
}
