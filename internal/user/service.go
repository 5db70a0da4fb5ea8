package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/notification"
	"github.com/slotlist/slotlist-backend-sub000/pkg/logger"
	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
	"github.com/slotlist/slotlist-backend-sub000/pkg/pg"
)

// Notifier delivers a notification to a single user.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, typ notification.Type, data map[string]string) error
}

// Service implements user lookup and admin-level permission management.
type Service struct {
	users    Directory
	perms    PermissionStore
	notifier Notifier
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNotifier enables grant notifications.
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

// NewService creates a user service.
func NewService(users Directory, perms PermissionStore, opts ...ServiceOption) *Service {
	s := &Service{
		users:  users,
		perms:  perms,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the public profile of one user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// List returns users, paginated.
func (s *Service) List(ctx context.Context, page apiutil.Pagination) ([]User, error) {
	return s.users.ListUsers(ctx, page)
}

// ListPermissions returns every grant held by one user.
func (s *Service) ListPermissions(ctx context.Context, userID uuid.UUID) ([]PermissionGrant, error) {
	grants, err := s.perms.ListPermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	if grants == nil {
		grants = []PermissionGrant{}
	}
	return grants, nil
}

// GrantPermission persists a permission string for a user and notifies the
// recipient. The admin surface may grant any well-formed string, including
// admin.superadmin and the global wildcard.
func (s *Service) GrantPermission(ctx context.Context, userID uuid.UUID, permission string) (PermissionGrant, error) {
	permission = strings.TrimSpace(permission)
	if err := ValidatePermission(permission); err != nil {
		return PermissionGrant{}, err
	}

	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if pg.IsNotFoundError(err) {
			return PermissionGrant{}, ErrUserNotFound
		}
		return PermissionGrant{}, fmt.Errorf("failed to load user: %w", err)
	}

	grant := PermissionGrant{
		ID:         uuid.New(),
		UserID:     userID,
		Permission: permission,
		CreatedAt:  time.Now(),
	}
	if err := s.perms.CreatePermission(ctx, grant); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return PermissionGrant{}, ErrGrantAlreadyExists
		}
		return PermissionGrant{}, fmt.Errorf("failed to create permission: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "permission granted",
		logger.UserID(userID),
		slog.String("permission", permission),
	)
	s.notify(ctx, userID, permission)
	return grant, nil
}

// RevokePermission removes a grant from a user.
func (s *Service) RevokePermission(ctx context.Context, userID uuid.UUID, permission string) error {
	if err := s.perms.DeletePermission(ctx, userID, strings.TrimSpace(permission)); err != nil {
		if pg.IsNotFoundError(err) {
			return ErrGrantNotFound
		}
		return fmt.Errorf("failed to delete permission: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "permission revoked",
		logger.UserID(userID),
		slog.String("permission", permission),
	)
	return nil
}

func (s *Service) notify(ctx context.Context, userID uuid.UUID, permission string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, userID, notification.TypePermissionGranted, map[string]string{
		"permission": permission,
	})
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to notify grant recipient",
			logger.UserID(userID),
			logger.Error(err),
		)
	}
}

// ValidatePermission checks a permission string is well formed: non-empty
// dot-separated segments with no whitespace and no unresolved placeholders.
// The global wildcard is accepted as-is.
func ValidatePermission(permission string) error {
	if permission == permissions.Wildcard {
		return nil
	}
	if permission == "" || strings.ContainsAny(permission, " \t\n") || strings.Contains(permission, "{{") {
		return ErrInvalidPermission
	}
	for _, segment := range strings.Split(permission, permissions.Separator) {
		if segment == "" {
			return ErrInvalidPermission
		}
	}
	return nil
}
