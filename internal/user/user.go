// Package user exposes public user lookup and administrative management of
// permission grants. Grants created here are flat permission strings; they
// become effective for HTTP access on the holder's next login, when the
// token's permissions claim is rebuilt from storage.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
)

var (
	ErrUserNotFound       = errors.New("user: not found")
	ErrGrantNotFound      = errors.New("user: permission grant not found")
	ErrGrantAlreadyExists = errors.New("user: permission already granted")
	ErrInvalidPermission  = errors.New("user: invalid permission string")
)

// User is the public view of an account. Email stays private to the
// account module.
type User struct {
	ID        uuid.UUID `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

// PermissionGrant is one persisted permission string held by a user.
type PermissionGrant struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Permission string    `json:"permission"`
	CreatedAt  time.Time `json:"created_at"`
}

// Directory reads user profiles.
type Directory interface {
	GetUser(ctx context.Context, id uuid.UUID) (User, error)
	ListUsers(ctx context.Context, page apiutil.Pagination) ([]User, error)
}

// PermissionStore persists permission grants. The prefix methods back the
// community- and mission-scoped grant management, which addresses grants by
// their dot-separated path prefix (e.g. "community.sel.").
type PermissionStore interface {
	CreatePermission(ctx context.Context, grant PermissionGrant) error
	DeletePermission(ctx context.Context, userID uuid.UUID, permission string) error
	DeletePermissionsByPrefix(ctx context.Context, prefix string) error
	ListPermissions(ctx context.Context, userID uuid.UUID) ([]PermissionGrant, error)
	ListPermissionsByPrefix(ctx context.Context, prefix string) ([]PermissionGrant, error)
}
