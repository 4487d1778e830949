package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Claims are the verified contents of a session token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer mints and verifies signed session tokens. Tokens are
// HMAC-signed bearer capabilities; no server-side session state exists,
// so possession of a validly-signed unexpired token is the sole proof
// of identity (modulo the per-request user re-fetch in the middleware).
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer signing with the given secret.
// ttl <= 0 falls back to DefaultSessionTTL.
func NewTokenIssuer(secret []byte, issuer string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &TokenIssuer{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the issuer's clock. Used by tests to exercise
// expiry without sleeping.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

// TTL returns the configured token lifetime.
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue mints a signed token for the given user id.
func (i *TokenIssuer) Issue(userID string) (string, error) {
	now := i.now()

	tok, err := jwt.NewBuilder().
		Subject(userID).
		Issuer(i.issuer).
		IssuedAt(now).
		Expiration(now.Add(i.ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, i.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify checks a raw token and returns its claims. The signature is
// verified before any claim is trusted; expiry is checked second.
// Failures map to ErrTokenMalformed, ErrTokenSignature or
// ErrTokenExpired.
func (i *TokenIssuer) Verify(raw string) (*Claims, error) {
	data := []byte(raw)

	// Structural parse only. Claims from this pass are discarded.
	if _, err := jwt.Parse(data, jwt.WithVerify(false), jwt.WithValidate(false)); err != nil {
		return nil, ErrTokenMalformed
	}

	tok, err := jwt.Parse(data, jwt.WithKey(jwa.HS256, i.secret), jwt.WithValidate(false))
	if err != nil {
		return nil, ErrTokenSignature
	}

	if err := jwt.Validate(tok, jwt.WithClock(jwt.ClockFunc(i.now))); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	return &Claims{
		Subject:   tok.Subject(),
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}, nil
}
