// Package account covers registration, login and the authenticated
// caller's own profile. Login resolves the caller's permission strings from
// storage and bakes them into the issued access token; the grant set is
// immutable for the token's lifetime.
package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errors.New("account: user not found")
	ErrEmailAlreadyExists = errors.New("account: email already registered")
	ErrInvalidCredentials = errors.New("account: invalid credentials")
)

// User is a registered account.
type User struct {
	ID        uuid.UUID `json:"id"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage persists users, credentials and permission grants.
type Storage interface {
	CreateUser(ctx context.Context, user User, passwordHash []byte) error
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error)
	ListPermissions(ctx context.Context, userID uuid.UUID) ([]string, error)
}
