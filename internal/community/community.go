// Package community implements community CRUD, membership applications and
// community-scoped permission management. Roles inside a community are plain
// permission strings under the community's slug prefix, e.g.
// "community.sel.founder"; route guards resolve the slug from the URL at
// request time.
package community

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
)

var (
	ErrCommunityNotFound    = errors.New("community: not found")
	ErrSlugTaken            = errors.New("community: slug already in use")
	ErrApplicationNotFound  = errors.New("community: application not found")
	ErrAlreadyApplied       = errors.New("community: user already applied")
	ErrApplicationDecided   = errors.New("community: application already decided")
	ErrPermissionOutOfScope = errors.New("community: permission outside community scope")
)

// Application states.
const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationDenied   = "denied"
)

// Community is a group of users organizing missions together.
type Community struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Tag       string    `json:"tag"`
	Slug      string    `json:"slug"`
	Website   string    `json:"website,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Application is a user's membership request.
type Application struct {
	ID          uuid.UUID  `json:"id"`
	CommunityID uuid.UUID  `json:"community_id"`
	UserID      uuid.UUID  `json:"user_id"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// Storage persists communities and membership applications.
type Storage interface {
	Create(ctx context.Context, c Community) error
	GetBySlug(ctx context.Context, slug string) (Community, error)
	List(ctx context.Context, page apiutil.Pagination) ([]Community, error)
	Update(ctx context.Context, c Community) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateApplication(ctx context.Context, a Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (Application, error)
	ListApplications(ctx context.Context, communityID uuid.UUID, status string, page apiutil.Pagination) ([]Application, error)
	UpdateApplication(ctx context.Context, a Application) error
}
