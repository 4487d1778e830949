package auth

import "errors"

// Authentication failures. These are internally distinct so callers can
// log and count them, but login handlers must collapse them into a
// single uniform response on the wire to avoid account enumeration.
var (
	// ErrUserNotFound means no account exists for the supplied email.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials means the account exists but the password
	// did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrWrongAuthMethod means the account exists but is federated and
	// has no password to check.
	ErrWrongAuthMethod = errors.New("account uses a federated login method")

	// ErrIdentityConflict means a federated first-login supplied an
	// email already owned by an account with a different origin.
	// Accounts are never merged silently.
	ErrIdentityConflict = errors.New("email already claimed by a different login method")
)

// Session token failures, in the order the verifier checks them.
var (
	// ErrTokenMalformed means the token is not structurally a JWT.
	ErrTokenMalformed = errors.New("malformed token")

	// ErrTokenSignature means the signature does not verify against the
	// server key. Claims from such a token are never inspected.
	ErrTokenSignature = errors.New("token signature invalid")

	// ErrTokenExpired means the signature verified but the token is past
	// its expiry.
	ErrTokenExpired = errors.New("token expired")
)
