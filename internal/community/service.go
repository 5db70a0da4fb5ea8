package community

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/notification"
	"github.com/slotlist/slotlist-backend-sub000/internal/user"
	"github.com/slotlist/slotlist-backend-sub000/pkg/logger"
	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
	"github.com/slotlist/slotlist-backend-sub000/pkg/pg"
	"github.com/slotlist/slotlist-backend-sub000/pkg/slug"
)

// Community role suffixes. The full permission string is
// "community.<slug>.<role>".
const (
	RoleFounder = "founder"
	RoleLeader  = "leader"
	RoleMember  = "member"
)

// PermissionStore manages the permission grants owned by a community. It is
// the same store the admin user surface writes to; communities address their
// grants by slug prefix.
type PermissionStore interface {
	CreatePermission(ctx context.Context, grant user.PermissionGrant) error
	DeletePermission(ctx context.Context, userID uuid.UUID, permission string) error
	DeletePermissionsByPrefix(ctx context.Context, prefix string) error
	ListPermissionsByPrefix(ctx context.Context, prefix string) ([]user.PermissionGrant, error)
}

// Notifier delivers a notification to a single user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, data map[string]string) error
}

// Service implements community management.
type Service struct {
	storage  Storage
	perms    PermissionStore
	notifier Notifier
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNotifier enables application decision notifications.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a community service.
func NewService(storage Storage, perms PermissionStore, opts ...ServiceOption) *Service {
	s := &Service{
		storage: storage,
		perms:   perms,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput holds the community creation fields.
type CreateInput struct {
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	Website string `json:"website"`
}

// Create stores a new community and grants the creator the founder role.
// The slug is derived from the name and never changes afterwards, since
// permission strings embed it.
func (s *Service) Create(ctx context.Context, creatorID uuid.UUID, in CreateInput) (Community, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Community{}, errors.Join(apiutil.ErrUnprocessableEntity, errors.New("community: name is required"))
	}

	c := Community{
		ID:        uuid.New(),
		Name:      name,
		Tag:       strings.TrimSpace(in.Tag),
		Slug:      slug.Make(name),
		Website:   strings.TrimSpace(in.Website),
		CreatedAt: time.Now(),
	}
	if err := s.storage.Create(ctx, c); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Community{}, ErrSlugTaken
		}
		return Community{}, fmt.Errorf("failed to create community: %w", err)
	}

	founderGrant := user.PermissionGrant{
		ID:         uuid.New(),
		UserID:     creatorID,
		Permission: RolePermission(c.Slug, RoleFounder),
		CreatedAt:  time.Now(),
	}
	if err := s.perms.CreatePermission(ctx, founderGrant); err != nil {
		return Community{}, fmt.Errorf("failed to grant founder role: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "community created",
		logger.CommunitySlug(c.Slug),
		logger.UserID(creatorID),
	)
	return c, nil
}

// Get returns one community by slug.
func (s *Service) Get(ctx context.Context, communitySlug string) (Community, error) {
	c, err := s.storage.GetBySlug(ctx, communitySlug)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Community{}, ErrCommunityNotFound
		}
		return Community{}, fmt.Errorf("failed to load community: %w", err)
	}
	return c, nil
}

// List returns communities, paginated.
func (s *Service) List(ctx context.Context, page apiutil.Pagination) ([]Community, error) {
	return s.storage.List(ctx, page)
}

// UpdateInput holds the mutable community fields. The slug is not among
// them.
type UpdateInput struct {
	Name    *string `json:"name"`
	Tag     *string `json:"tag"`
	Website *string `json:"website"`
}

// Update applies a partial update to a community.
func (s *Service) Update(ctx context.Context, communitySlug string, in UpdateInput) (Community, error) {
	c, err := s.Get(ctx, communitySlug)
	if err != nil {
		return Community{}, err
	}

	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Tag != nil {
		c.Tag = strings.TrimSpace(*in.Tag)
	}
	if in.Website != nil {
		c.Website = strings.TrimSpace(*in.Website)
	}

	if err := s.storage.Update(ctx, c); err != nil {
		return Community{}, fmt.Errorf("failed to update community: %w", err)
	}
	return c, nil
}

// Delete removes a community and every permission grant under its slug
// prefix, so stale role strings cannot outlive the community.
func (s *Service) Delete(ctx context.Context, communitySlug string) error {
	c, err := s.Get(ctx, communitySlug)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("failed to delete community: %w", err)
	}
	if err := s.perms.DeletePermissionsByPrefix(ctx, Prefix(c.Slug)); err != nil {
		return fmt.Errorf("failed to delete community permissions: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "community deleted", logger.CommunitySlug(c.Slug))
	return nil
}

// Apply files a membership application for the caller.
func (s *Service) Apply(ctx context.Context, communitySlug string, userID uuid.UUID) (Application, error) {
	c, err := s.Get(ctx, communitySlug)
	if err != nil {
		return Application{}, err
	}

	a := Application{
		ID:          uuid.New(),
		CommunityID: c.ID,
		UserID:      userID,
		Status:      ApplicationPending,
		CreatedAt:   time.Now(),
	}
	if err := s.storage.CreateApplication(ctx, a); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return Application{}, ErrAlreadyApplied
		}
		return Application{}, fmt.Errorf("failed to create application: %w", err)
	}
	return a, nil
}

// ListApplications returns a community's applications, optionally filtered
// by status.
func (s *Service) ListApplications(ctx context.Context, communitySlug, status string, page apiutil.Pagination) ([]Application, error) {
	c, err := s.Get(ctx, communitySlug)
	if err != nil {
		return nil, err
	}
	return s.storage.ListApplications(ctx, c.ID, status, page)
}

// DecideApplication accepts or denies a pending application. Acceptance
// grants the member role; either outcome notifies the applicant.
func (s *Service) DecideApplication(ctx context.Context, communitySlug string, applicationID uuid.UUID, accept bool) (Application, error) {
	c, err := s.Get(ctx, communitySlug)
	if err != nil {
		return Application{}, err
	}

	a, err := s.storage.GetApplication(ctx, applicationID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Application{}, ErrApplicationNotFound
		}
		return Application{}, fmt.Errorf("failed to load application: %w", err)
	}
	if a.CommunityID != c.ID {
		return Application{}, ErrApplicationNotFound
	}
	if a.Status != ApplicationPending {
		return Application{}, ErrApplicationDecided
	}

	now := time.Now()
	a.DecidedAt = &now
	typ := notification.TypeApplicationDenied
	if accept {
		a.Status = ApplicationAccepted
		typ = notification.TypeApplicationAccepted
	} else {
		a.Status = ApplicationDenied
	}

	if err := s.storage.UpdateApplication(ctx, a); err != nil {
		return Application{}, fmt.Errorf("failed to update application: %w", err)
	}

	if accept {
		memberGrant := user.PermissionGrant{
			ID:         uuid.New(),
			UserID:     a.UserID,
			Permission: RolePermission(c.Slug, RoleMember),
			CreatedAt:  now,
		}
		if err := s.perms.CreatePermission(ctx, memberGrant); err != nil && !pg.IsDuplicateKeyError(err) {
			return Application{}, fmt.Errorf("failed to grant member role: %w", err)
		}
	}

	s.notify(ctx, a.UserID, typ, map[string]string{"communityName": c.Name})
	return a, nil
}

// ListPermissions returns every grant scoped to the community.
func (s *Service) ListPermissions(ctx context.Context, communitySlug string) ([]user.PermissionGrant, error) {
	if _, err := s.Get(ctx, communitySlug); err != nil {
		return nil, err
	}
	grants, err := s.perms.ListPermissionsByPrefix(ctx, Prefix(communitySlug))
	if err != nil {
		return nil, fmt.Errorf("failed to list community permissions: %w", err)
	}
	if grants == nil {
		grants = []user.PermissionGrant{}
	}
	return grants, nil
}

// GrantPermission grants a community-scoped permission to a user. Only
// strings under the community's own prefix are accepted, so a founder
// cannot mint grants for other communities or the admin namespace.
func (s *Service) GrantPermission(ctx context.Context, communitySlug string, userID uuid.UUID, permission string) (user.PermissionGrant, error) {
	c, err := s.Get(ctx, communitySlug)
	if err != nil {
		return user.PermissionGrant{}, err
	}

	permission = strings.TrimSpace(permission)
	if err := validateScoped(c.Slug, permission); err != nil {
		return user.PermissionGrant{}, err
	}

	grant := user.PermissionGrant{
		ID:         uuid.New(),
		UserID:     userID,
		Permission: permission,
		CreatedAt:  time.Now(),
	}
	if err := s.perms.CreatePermission(ctx, grant); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return user.PermissionGrant{}, user.ErrGrantAlreadyExists
		}
		return user.PermissionGrant{}, fmt.Errorf("failed to create permission: %w", err)
	}

	s.notify(ctx, userID, notification.TypePermissionGranted, map[string]string{"permission": permission})
	return grant, nil
}

// RevokePermission removes a community-scoped grant from a user.
func (s *Service) RevokePermission(ctx context.Context, communitySlug string, userID uuid.UUID, permission string) error {
	c, err := s.Get(ctx, communitySlug)
	if err != nil {
		return err
	}

	permission = strings.TrimSpace(permission)
	if err := validateScoped(c.Slug, permission); err != nil {
		return err
	}

	if err := s.perms.DeletePermission(ctx, userID, permission); err != nil {
		if pg.IsNotFoundError(err) {
			return user.ErrGrantNotFound
		}
		return fmt.Errorf("failed to delete permission: %w", err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, typ notification.Type, data map[string]string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, userID, typ, data); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to send community notification",
			logger.UserID(userID),
			logger.Error(err),
		)
	}
}

// Prefix returns the permission prefix owned by a community,
// e.g. "community.sel.".
func Prefix(communitySlug string) string {
	return "community" + permissions.Separator + communitySlug + permissions.Separator
}

// RolePermission builds the full permission string for a community role.
func RolePermission(communitySlug, role string) string {
	return Prefix(communitySlug) + role
}

func validateScoped(communitySlug, permission string) error {
	if err := user.ValidatePermission(permission); err != nil {
		return err
	}
	prefix := Prefix(communitySlug)
	if !strings.HasPrefix(permission, prefix) || permission == prefix {
		return ErrPermissionOutOfScope
	}
	return nil
}
