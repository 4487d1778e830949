package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthOrigin identifies how an account authenticates. Every user has
// exactly one origin: either local credentials or a single federated
// identity provider.
type AuthOrigin string

const (
	AuthOriginLocal     AuthOrigin = "local"
	AuthOriginGoogle    AuthOrigin = "google"
	AuthOriginMicrosoft AuthOrigin = "microsoft"
)

// Valid reports whether the origin is one of the known values.
func (o AuthOrigin) Valid() bool {
	switch o {
	case AuthOriginLocal, AuthOriginGoogle, AuthOriginMicrosoft:
		return true
	}
	return false
}

// Federated reports whether the origin is an external identity provider.
func (o AuthOrigin) Federated() bool {
	return o == AuthOriginGoogle || o == AuthOriginMicrosoft
}

// User is the unified identity record. A local user carries a password
// hash and no provider id; a federated user carries a provider id and no
// password hash. Records are immutable after creation.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Origin       AuthOrigin `json:"origin"`
	PasswordHash string     `json:"-"`
	ProviderID   string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ExternalProfile is the normalized shape of a verified profile returned
// by an identity provider. Provider-specific payloads are converted to
// this at the adapter boundary so nothing downstream branches on
// provider shape.
type ExternalProfile struct {
	Provider    AuthOrigin
	ExternalID  string
	Email       string
	DisplayName string
}
