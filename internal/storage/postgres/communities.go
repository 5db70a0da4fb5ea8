package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/community"
)

// CommunityRepository persists communities and membership applications.
type CommunityRepository struct {
	pool *pgxpool.Pool
}

// NewCommunityRepository creates a CommunityRepository.
func NewCommunityRepository(pool *pgxpool.Pool) *CommunityRepository {
	return &CommunityRepository{pool: pool}
}

func (r *CommunityRepository) Create(ctx context.Context, c community.Community) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO communities (id, name, tag, slug, website, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Tag, c.Slug, c.Website, c.CreatedAt,
	)
	return err
}

func (r *CommunityRepository) GetBySlug(ctx context.Context, slug string) (community.Community, error) {
	var c community.Community
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, tag, slug, website, created_at FROM communities WHERE slug = $1`,
		slug,
	).Scan(&c.ID, &c.Name, &c.Tag, &c.Slug, &c.Website, &c.CreatedAt)
	return c, err
}

func (r *CommunityRepository) List(ctx context.Context, page apiutil.Pagination) ([]community.Community, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, tag, slug, website, created_at FROM communities
		 ORDER BY name ASC
		 LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var communities []community.Community
	for rows.Next() {
		var c community.Community
		if err := rows.Scan(&c.ID, &c.Name, &c.Tag, &c.Slug, &c.Website, &c.CreatedAt); err != nil {
			return nil, err
		}
		communities = append(communities, c)
	}
	return communities, rows.Err()
}

func (r *CommunityRepository) Update(ctx context.Context, c community.Community) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE communities SET name = $2, tag = $3, website = $4 WHERE id = $1`,
		c.ID, c.Name, c.Tag, c.Website,
	)
	return err
}

func (r *CommunityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
	return err
}

func (r *CommunityRepository) CreateApplication(ctx context.Context, a community.Application) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO community_applications (id, community_id, user_id, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.CommunityID, a.UserID, a.Status, a.CreatedAt,
	)
	return err
}

func (r *CommunityRepository) GetApplication(ctx context.Context, id uuid.UUID) (community.Application, error) {
	var a community.Application
	err := r.pool.QueryRow(ctx,
		`SELECT id, community_id, user_id, status, created_at, decided_at
		 FROM community_applications WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.CommunityID, &a.UserID, &a.Status, &a.CreatedAt, &a.DecidedAt)
	return a, err
}

func (r *CommunityRepository) ListApplications(ctx context.Context, communityID uuid.UUID, status string, page apiutil.Pagination) ([]community.Application, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, community_id, user_id, status, created_at, decided_at
		 FROM community_applications
		 WHERE community_id = $1 AND ($2 = '' OR status = $2)
		 ORDER BY created_at ASC
		 LIMIT $3 OFFSET $4`,
		communityID, status, page.Limit, page.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var applications []community.Application
	for rows.Next() {
		var a community.Application
		if err := rows.Scan(&a.ID, &a.CommunityID, &a.UserID, &a.Status, &a.CreatedAt, &a.DecidedAt); err != nil {
			return nil, err
		}
		applications = append(applications, a)
	}
	return applications, rows.Err()
}

func (r *CommunityRepository) UpdateApplication(ctx context.Context, a community.Application) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE community_applications SET status = $2, decided_at = $3 WHERE id = $1`,
		a.ID, a.Status, a.DecidedAt,
	)
	return err
}
