package database

import (
	"context"

	"github.com/google/uuid"

	"github.com/agronet/identity-api/internal/models"
)

// UserRepositoryInterface defines the interface for user repository operations
// This interface enables better testability by allowing in-memory implementations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByProviderID(ctx context.Context, origin models.AuthOrigin, providerID string) (*models.User, error)
}

// Ensure concrete types implement the interface
var (
	_ UserRepositoryInterface = (*UserRepository)(nil)
	_ UserRepositoryInterface = (*MemoryUserRepository)(nil)
)
