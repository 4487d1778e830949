package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokenIssuer(testSecret, "identity-api", time.Hour).
		WithClock(func() time.Time { return issued })

	raw, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if claims.Subject != "user-123" {
		t.Errorf("subject = %q, want %q", claims.Subject, "user-123")
	}
	if !claims.IssuedAt.Equal(issued) {
		t.Errorf("issued at = %v, want %v", claims.IssuedAt, issued)
	}
	if !claims.ExpiresAt.Equal(issued.Add(time.Hour)) {
		t.Errorf("expires at = %v, want %v", claims.ExpiresAt, issued.Add(time.Hour))
	}
}

func TestTokenIssuer_DefaultTTL(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokenIssuer(testSecret, "identity-api", 0).
		WithClock(func() time.Time { return issued })

	if tokens.TTL() != DefaultSessionTTL {
		t.Fatalf("TTL = %v, want %v", tokens.TTL(), DefaultSessionTTL)
	}

	raw, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := tokens.Verify(raw)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !claims.ExpiresAt.Equal(issued.Add(24 * time.Hour)) {
		t.Errorf("expires at = %v, want issued + 24h", claims.ExpiresAt)
	}
}

func TestTokenIssuer_Malformed(t *testing.T) {
	t.Parallel()

	tokens := NewTokenIssuer(testSecret, "identity-api", time.Hour)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := tokens.Verify(raw); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q) = %v, want ErrTokenMalformed", raw, err)
		}
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	tokens := NewTokenIssuer(testSecret, "identity-api", time.Hour)
	other := NewTokenIssuer([]byte("anothersecretanothersecret123456"), "identity-api", time.Hour)

	raw, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(raw); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("Verify with wrong secret = %v, want ErrTokenSignature", err)
	}
}

func TestTokenIssuer_TamperedPayload(t *testing.T) {
	t.Parallel()

	tokens := NewTokenIssuer(testSecret, "identity-api", time.Hour)

	raw, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three-part compact token, got %d parts", len(parts))
	}

	// Swap the payload for one from a token with a different subject.
	rawOther, err := tokens.Issue("user-456")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	otherParts := strings.Split(rawOther, ".")
	tampered := parts[0] + "." + otherParts[1] + "." + parts[2]

	if _, err := tokens.Verify(tampered); !errors.Is(err, ErrTokenSignature) {
		t.Fatalf("Verify of tampered token = %v, want ErrTokenSignature", err)
	}
}

func TestTokenIssuer_Expired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokenIssuer(testSecret, "identity-api", time.Hour).
		WithClock(func() time.Time { return now })

	raw, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Still valid just before expiry.
	now = now.Add(59 * time.Minute)
	if _, err := tokens.Verify(raw); err != nil {
		t.Fatalf("token rejected before expiry: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := tokens.Verify(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify after expiry = %v, want ErrTokenExpired", err)
	}
}
