package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/pkg/jwt"
	"github.com/slotlist/slotlist-backend-sub000/pkg/logger"
	"github.com/slotlist/slotlist-backend-sub000/pkg/password"
	"github.com/slotlist/slotlist-backend-sub000/pkg/pg"
)

// Service implements registration, credential verification and token
// issuance.
type Service struct {
	storage  Storage
	tokens   *jwt.Service
	tokenTTL time.Duration
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTokenTTL overrides the access token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = l
	}
}

// NewService creates an account service.
func NewService(storage Storage, tokens *jwt.Service, opts ...ServiceOption) *Service {
	s := &Service{
		storage:  storage,
		tokens:   tokens,
		tokenTTL: 24 * time.Hour,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new user with a bcrypt-hashed password. New users start
// with an empty grant set; community and mission roles are earned later.
func (s *Service) Register(ctx context.Context, nickname, email, plaintext string) (User, error) {
	nickname = strings.TrimSpace(nickname)
	email = strings.ToLower(strings.TrimSpace(email))
	if nickname == "" || email == "" {
		return User{}, errors.New("account: nickname and email are required")
	}

	hash, err := password.Hash(plaintext)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:        uuid.New(),
		Nickname:  nickname,
		Email:     email,
		CreatedAt: time.Now(),
	}
	if err := s.storage.CreateUser(ctx, user, hash); err != nil {
		if pg.IsDuplicateKeyError(err) {
			return User{}, ErrEmailAlreadyExists
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "user registered", logger.UserID(user.ID))
	return user, nil
}

// Login verifies credentials and issues an access token. The caller's
// current permission strings are loaded from storage and embedded as the
// token's permissions claim; a grant added after login only takes effect on
// the next token.
func (s *Service) Login(ctx context.Context, email, plaintext string) (string, User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := s.storage.GetPasswordHash(ctx, user.ID)
	if err != nil {
		return "", User{}, fmt.Errorf("failed to load credentials: %w", err)
	}
	if err := password.Verify(hash, plaintext); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	grants, err := s.storage.ListPermissions(ctx, user.ID)
	if err != nil {
		return "", User{}, fmt.Errorf("failed to load permissions: %w", err)
	}

	now := time.Now()
	token, err := s.tokens.Generate(jwt.Claims{
		Subject:     user.ID.String(),
		Nickname:    user.Nickname,
		Permissions: grants,
		IssuedAt:    now.Unix(),
		ExpiresAt:   now.Add(s.tokenTTL).Unix(),
	})
	if err != nil {
		return "", User{}, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "user logged in",
		logger.UserID(user.ID),
		slog.Int("permissions", len(grants)),
	)
	return token, user, nil
}

// Account returns the caller's own profile together with the permission
// strings currently persisted for them, which may be fresher than the ones
// in the presented token.
func (s *Service) Account(ctx context.Context, userID uuid.UUID) (User, []string, error) {
	user, err := s.storage.GetUserByID(ctx, userID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, nil, ErrUserNotFound
		}
		return User{}, nil, fmt.Errorf("failed to load user: %w", err)
	}

	grants, err := s.storage.ListPermissions(ctx, userID)
	if err != nil {
		return User{}, nil, fmt.Errorf("failed to load permissions: %w", err)
	}
	if grants == nil {
		grants = []string{}
	}
	return user, grants, nil
}
