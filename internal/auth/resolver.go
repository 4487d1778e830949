package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agronet/identity-api/internal/database"
	"github.com/agronet/identity-api/internal/models"
)

// Resolver maps credentials or external-provider profiles to local user
// records, creating records on first sight for federated identities.
type Resolver struct {
	users  database.UserRepositoryInterface
	logger *zap.Logger
}

// NewResolver creates a resolver over the given user store.
func NewResolver(users database.UserRepositoryInterface, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{users: users, logger: logger}
}

// CreateLocal registers a new local account. The password is hashed
// before anything touches storage. Returns database.ErrDuplicateEmail
// if the email is already claimed by any origin.
func (r *Resolver) CreateLocal(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		Origin:       models.AuthOriginLocal,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := r.users.Create(ctx, user); err != nil {
		return nil, err
	}

	r.logger.Info("local_user_created",
		zap.String("user_id", user.ID.String()),
	)

	return user, nil
}

// ResolveLocal authenticates an email/password pair against a local
// account. The three failure modes are distinct for logging and metrics
// but callers must present them identically on the wire.
func (r *Resolver) ResolveLocal(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.users.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.Origin != models.AuthOriginLocal {
		return nil, ErrWrongAuthMethod
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ResolveFederated maps a verified provider profile to a user record,
// creating one on first sight. Two concurrent first-logins for the same
// identity resolve to a single record: the loser of the creation race
// re-reads and returns the winner's row. A duplicate email that does
// not belong to this identity surfaces ErrIdentityConflict.
func (r *Resolver) ResolveFederated(ctx context.Context, profile models.ExternalProfile) (*models.User, error) {
	if !profile.Provider.Federated() {
		return nil, fmt.Errorf("origin %q is not a federated provider", profile.Provider)
	}
	if profile.ExternalID == "" || profile.Email == "" {
		return nil, fmt.Errorf("incomplete provider profile for %s", profile.Provider)
	}

	user, err := r.users.GetByProviderID(ctx, profile.Provider, profile.ExternalID)
	if err == nil {
		// No profile-sync: the record is returned as first created.
		return user, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up federated identity: %w", err)
	}

	user = &models.User{
		ID:         uuid.New(),
		Name:       profile.DisplayName,
		Email:      profile.Email,
		Origin:     profile.Provider,
		ProviderID: profile.ExternalID,
		CreatedAt:  time.Now().UTC(),
	}

	createErr := r.users.Create(ctx, user)
	if createErr == nil {
		r.logger.Info("federated_user_created",
			zap.String("user_id", user.ID.String()),
			zap.String("provider", string(profile.Provider)),
		)
		return user, nil
	}

	if errors.Is(createErr, database.ErrDuplicateEmail) || errors.Is(createErr, database.ErrDuplicateProviderIdentity) {
		// Either we lost a race against an identical first-login, or the
		// email belongs to an account with a different origin. A re-read
		// of the provider identity distinguishes the two.
		winner, lookupErr := r.users.GetByProviderID(ctx, profile.Provider, profile.ExternalID)
		if lookupErr == nil {
			return winner, nil
		}
		if errors.Is(lookupErr, database.ErrNotFound) {
			return nil, ErrIdentityConflict
		}
		return nil, fmt.Errorf("failed to re-read federated identity: %w", lookupErr)
	}

	return nil, fmt.Errorf("failed to create federated user: %w", createErr)
}
