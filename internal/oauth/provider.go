// Package oauth adapts external identity providers to a single
// normalized profile shape. Each adapter owns its endpoint and scope
// configuration and converts the provider's userinfo payload at the
// boundary, so nothing downstream branches on provider shape.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/agronet/identity-api/internal/models"
)

// Provider is one configured identity provider. Implementations return
// a verified, normalized profile or an error; a partially-resolved
// profile is never handed back.
type Provider interface {
	// Name is the provider key used in routes and stored as auth origin.
	Name() models.AuthOrigin

	// AuthCodeURL builds the provider's consent page URL carrying the
	// anti-forgery state.
	AuthCodeURL(state string) string

	// FetchProfile exchanges the callback code and fetches the user's
	// profile from the provider.
	FetchProfile(ctx context.Context, code string) (*models.ExternalProfile, error)
}

// Registry holds the providers configured at construction time, keyed
// by name. Handlers are built with an explicit registry rather than a
// process-wide one.
type Registry map[models.AuthOrigin]Provider

// NewRegistry builds a registry from the given providers.
func NewRegistry(providers ...Provider) Registry {
	reg := make(Registry, len(providers))
	for _, p := range providers {
		reg[p.Name()] = p
	}
	return reg
}

// Get returns the provider for the given name.
func (r Registry) Get(name models.AuthOrigin) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// GenerateState returns a cryptographically random state value for the
// authorization redirect.
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
