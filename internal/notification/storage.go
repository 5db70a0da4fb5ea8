package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
)

// Storage persists notifications.
type Storage interface {
	Create(ctx context.Context, notif Notification) error
	List(ctx context.Context, userID uuid.UUID, page apiutil.Pagination) ([]Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids ...uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// UserDirectory resolves the recipient address for email delivery.
type UserDirectory interface {
	GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error)
}
