package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by HashPassword for empty input. Hashing
// an empty string would otherwise succeed and produce a verifiable hash.
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword applies a salted adaptive hash to a password. The cost
// factor is bcrypt's default, tuned to take on the order of 100ms on
// commodity hardware.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
// The comparison is constant time regardless of where a mismatch
// occurs; it never returns an error for a plain mismatch.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
