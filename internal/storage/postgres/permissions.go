package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotlist/slotlist-backend-sub000/internal/user"
)

// PermissionRepository persists permission grants. Prefix matching uses an
// escaped LIKE so a slug containing "%" or "_" cannot widen the match.
type PermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository creates a PermissionRepository.
func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

func (r *PermissionRepository) CreatePermission(ctx context.Context, grant user.PermissionGrant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO permissions (id, user_id, permission, created_at)
		 VALUES ($1, $2, $3, $4)`,
		grant.ID, grant.UserID, grant.Permission, grant.CreatedAt,
	)
	return err
}

func (r *PermissionRepository) DeletePermission(ctx context.Context, userID uuid.UUID, permission string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM permissions WHERE user_id = $1 AND permission = $2`,
		userID, permission,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PermissionRepository) DeletePermissionsByPrefix(ctx context.Context, prefix string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM permissions WHERE permission LIKE $1 || '%'`,
		escapeLike(prefix),
	)
	return err
}

func (r *PermissionRepository) ListPermissions(ctx context.Context, userID uuid.UUID) ([]user.PermissionGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, permission, created_at FROM permissions
		 WHERE user_id = $1
		 ORDER BY permission ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

func (r *PermissionRepository) ListPermissionsByPrefix(ctx context.Context, prefix string) ([]user.PermissionGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, permission, created_at FROM permissions
		 WHERE permission LIKE $1 || '%'
		 ORDER BY permission ASC, created_at ASC`,
		escapeLike(prefix),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGrants(rows)
}

// escapeLike neutralizes LIKE metacharacters so prefixes match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func scanGrants(rows pgx.Rows) ([]user.PermissionGrant, error) {
	var grants []user.PermissionGrant
	for rows.Next() {
		var g user.PermissionGrant
		if err := rows.Scan(&g.ID, &g.UserID, &g.Permission, &g.CreatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}
