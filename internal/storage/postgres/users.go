package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slotlist/slotlist-backend-sub000/internal/account"
	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
	"github.com/slotlist/slotlist-backend-sub000/internal/user"
)

// UserRepository persists users. It serves both the account module (full
// profile with email and credentials) and the user module (public view).
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) CreateUser(ctx context.Context, u account.User, passwordHash []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, nickname, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Nickname, u.Email, passwordHash, u.CreatedAt,
	)
	return err
}

func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (account.User, error) {
	var u account.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, nickname, email, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Nickname, &u.Email, &u.CreatedAt)
	return u, err
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (account.User, error) {
	var u account.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, nickname, email, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Nickname, &u.Email, &u.CreatedAt)
	return u, err
}

func (r *UserRepository) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var hash []byte
	err := r.pool.QueryRow(ctx,
		`SELECT password_hash FROM users WHERE id = $1`,
		userID,
	).Scan(&hash)
	return hash, err
}

// GetUserEmail serves the notification module's email delivery lookup.
func (r *UserRepository) GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx,
		`SELECT email FROM users WHERE id = $1`,
		userID,
	).Scan(&email)
	return email, err
}

// ListPermissions returns the flat permission strings of a user, as embedded
// in the token's permissions claim at login.
func (r *UserRepository) ListPermissions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT permission FROM permissions WHERE user_id = $1 ORDER BY permission ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		grants = append(grants, p)
	}
	return grants, rows.Err()
}

func (r *UserRepository) GetUser(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, nickname, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Nickname, &u.CreatedAt)
	return u, err
}

func (r *UserRepository) ListUsers(ctx context.Context, page apiutil.Pagination) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, nickname, created_at FROM users
		 ORDER BY nickname ASC
		 LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Nickname, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
