package database

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/agronet/identity-api/internal/models"
)

// MemoryUserRepository is an in-memory UserRepositoryInterface with the
// same insert-if-absent guarantees as the postgres repository. It backs
// package tests; nothing survives a restart.
type MemoryUserRepository struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*models.User
	byEmail    map[string]uuid.UUID
	byProvider map[string]uuid.UUID
}

// NewMemoryUserRepository creates an empty in-memory repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:       make(map[uuid.UUID]*models.User),
		byEmail:    make(map[string]uuid.UUID),
		byProvider: make(map[string]uuid.UUID),
	}
}

func providerKey(origin models.AuthOrigin, providerID string) string {
	return string(origin) + ":" + providerID
}

// Create inserts a user, enforcing the same unique constraints as the
// database schema under a single lock so concurrent attempts cannot
// both succeed.
func (r *MemoryUserRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return ErrDuplicateEmail
	}
	if user.ProviderID != "" {
		if _, ok := r.byProvider[providerKey(user.Origin, user.ProviderID)]; ok {
			return ErrDuplicateProviderIdentity
		}
	}

	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = user.ID
	if user.ProviderID != "" {
		r.byProvider[providerKey(user.Origin, user.ProviderID)] = user.ID
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *user
	return &clone, nil
}

// GetByEmail retrieves a user by email.
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

// GetByProviderID retrieves a federated user by provider and external id.
func (r *MemoryUserRepository) GetByProviderID(ctx context.Context, origin models.AuthOrigin, providerID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byProvider[providerKey(origin, providerID)]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

// Delete removes a user. Only used by tests to simulate an account
// deleted while its session token is still live.
func (r *MemoryUserRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byEmail, user.Email)
	if user.ProviderID != "" {
		delete(r.byProvider, providerKey(user.Origin, user.ProviderID))
	}
	delete(r.byID, id)
}
