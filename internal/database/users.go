package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/agronet/identity-api/internal/models"
)

// Sentinel errors for user storage. Unique-constraint violations are
// mapped to typed errors here so callers never inspect driver errors.
var (
	// ErrNotFound means no user matched the lookup key.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail means the email is already claimed by another user.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateProviderIdentity means a user already exists for the
	// (provider, external id) pair.
	ErrDuplicateProviderIdentity = errors.New("provider identity already registered")
)

const (
	emailConstraint            = "users_email_key"
	providerIdentityConstraint = "users_provider_identity_key"
)

// UserRepository handles user database operations
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, name, email, auth_origin, password_hash, provider_id, created_at"

// Create inserts a new user. Uniqueness of email and of
// (auth_origin, provider_id) is enforced by the database so concurrent
// inserts for the same identity cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, auth_origin, password_hash, provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Origin,
		nullString(user.PasswordHash),
		nullString(user.ProviderID),
		user.CreatedAt,
	).Scan(&user.CreatedAt)

	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetByProviderID retrieves a federated user by provider and external id
func (r *UserRepository) GetByProviderID(ctx context.Context, origin models.AuthOrigin, providerID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_origin = $1 AND provider_id = $2`
	return r.scanOne(r.db.QueryRowContext(ctx, query, origin, providerID))
}

func (r *UserRepository) scanOne(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var passwordHash, providerID sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Origin,
		&passwordHash,
		&providerID,
		&user.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.PasswordHash = passwordHash.String
	user.ProviderID = providerID.String

	return user, nil
}

// duplicateError maps postgres unique violations to sentinel errors.
func duplicateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case emailConstraint:
		return ErrDuplicateEmail
	case providerIdentityConstraint:
		return ErrDuplicateProviderIdentity
	}
	return fmt.Errorf("unique violation on %s: %w", pqErr.Constraint, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
