package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/notification"
)

// NotificationRepository persists notifications. The template data map is
// stored as jsonb so the frontend can re-link entities from it.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a NotificationRepository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n notification.Notification) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title, message, data, read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.Data, n.Read, n.CreatedAt,
	)
	return err
}

func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, page apiutil.Pagination) ([]notification.Notification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, type, title, message, data, read, read_at, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID uuid.UUID, ids ...uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE, read_at = now()
		 WHERE user_id = $1 AND id = ANY($2) AND NOT read`,
		userID, ids,
	)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE, read_at = now()
		 WHERE user_id = $1 AND NOT read`,
		userID,
	)
	return err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read`,
		userID,
	).Scan(&count)
	return count, err
}
