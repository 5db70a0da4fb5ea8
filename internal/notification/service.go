package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/pkg/email"
	"github.com/slotlist/slotlist-backend-sub000/pkg/logger"
)

// Service orchestrates notification rendering, storage, caching and email
// delivery.
type Service struct {
	storage Storage
	catalog *Catalog
	cache   *UnreadCache
	emails  email.Sender
	users   UserDirectory
	logger  *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEmailDelivery enables best-effort email copies of notifications.
func WithEmailDelivery(sender email.Sender, users UserDirectory) ServiceOption {
	return func(s *Service) {
		s.emails = sender
		s.users = users
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates a notification service.
func NewService(storage Storage, catalog *Catalog, cache *UnreadCache, opts ...ServiceOption) *Service {
	s := &Service{
		storage: storage,
		catalog: catalog,
		cache:   cache,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify renders and stores a notification for one user, then attempts
// email delivery. Storage failure fails the call; email failure is logged
// and swallowed since the notification is already persisted.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, typ Type, data map[string]string) error {
	title, message, err := s.catalog.Render(typ, data)
	if err != nil {
		return err
	}

	notif := Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}

	if err := s.storage.Create(ctx, notif); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	s.cache.Invalidate(ctx, userID)

	s.deliverEmail(ctx, notif)
	return nil
}

// NotifyAll fans one notification out to several users, e.g. every
// registered participant of a deleted mission.
func (s *Service) NotifyAll(ctx context.Context, userIDs []uuid.UUID, typ Type, data map[string]string) error {
	for _, userID := range userIDs {
		if err := s.Notify(ctx, userID, typ, data); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) deliverEmail(ctx context.Context, notif Notification) {
	if s.emails == nil || s.users == nil {
		return
	}

	to, err := s.users.GetUserEmail(ctx, notif.UserID)
	if err != nil || to == "" {
		return
	}

	msg := email.Message{
		To:       to,
		Subject:  notif.Title,
		BodyHTML: "<p>" + notif.Message + "</p>",
		Tag:      string(notif.Type),
	}
	if err := s.emails.Send(ctx, msg); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to deliver notification email, stored copy remains",
			slog.String("notification_id", notif.ID.String()),
			logger.UserID(notif.UserID),
			logger.Error(err),
		)
	}
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, page apiutil.Pagination) ([]Notification, error) {
	return s.storage.List(ctx, userID, page)
}

// CountUnread returns the unread counter, served from cache when possible.
func (s *Service) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	if count, ok := s.cache.Get(ctx, userID); ok {
		return count, nil
	}

	count, err := s.storage.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, userID, count)
	return count, nil
}

// MarkRead marks the given notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID uuid.UUID, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.storage.MarkRead(ctx, userID, ids...); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.storage.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}
