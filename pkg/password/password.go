package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinLength is the minimum accepted password length.
	MinLength = 8
	// MaxLength caps input size; bcrypt ignores bytes past 72 anyway.
	MaxLength = 72
)

var (
	ErrTooShort = errors.New("password: too short")
	ErrTooLong  = errors.New("password: too long")
	// ErrMismatch is returned when a password does not match its hash.
	ErrMismatch = errors.New("password: does not match")
)

// Hash validates the password length and returns its bcrypt hash.
func Hash(password string) ([]byte, error) {
	if len(password) < MinLength {
		return nil, ErrTooShort
	}
	if len(password) > MaxLength {
		return nil, ErrTooLong
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// Verify compares a candidate password against a stored hash. Any bcrypt
// failure maps to ErrMismatch so callers cannot distinguish malformed
// hashes from wrong passwords.
func Verify(hash []byte, password string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrMismatch
	}
	return nil
}
