package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotlist/slotlist-backend-sub000/internal/account"
	"github.com/slotlist/slotlist-backend-sub000/pkg/jwt"
)

type fakeStorage struct {
	users       map[uuid.UUID]account.User
	byEmail     map[string]uuid.UUID
	hashes      map[uuid.UUID][]byte
	permissions map[uuid.UUID][]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:       make(map[uuid.UUID]account.User),
		byEmail:     make(map[string]uuid.UUID),
		hashes:      make(map[uuid.UUID][]byte),
		permissions: make(map[uuid.UUID][]string),
	}
}

// The fake surfaces the same error shapes as the postgres repositories so
// the service's pg error mapping is exercised.
func (f *fakeStorage) CreateUser(_ context.Context, user account.User, hash []byte) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	f.users[user.ID] = user
	f.byEmail[user.Email] = user.ID
	f.hashes[user.ID] = hash
	return nil
}

func (f *fakeStorage) GetUserByID(_ context.Context, id uuid.UUID) (account.User, error) {
	user, ok := f.users[id]
	if !ok {
		return account.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeStorage) GetUserByEmail(_ context.Context, email string) (account.User, error) {
	id, ok := f.byEmail[email]
	if !ok {
		return account.User{}, pgx.ErrNoRows
	}
	return f.users[id], nil
}

func (f *fakeStorage) GetPasswordHash(_ context.Context, userID uuid.UUID) ([]byte, error) {
	hash, ok := f.hashes[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return hash, nil
}

func (f *fakeStorage) ListPermissions(_ context.Context, userID uuid.UUID) ([]string, error) {
	return f.permissions[userID], nil
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	newService := func(t *testing.T, storage account.Storage) *account.Service {
		t.Helper()
		tokens, err := jwt.New([]byte("test-secret-at-least-32-bytes-long"))
		require.NoError(t, err)
		return account.NewService(storage, tokens)
	}

	t.Run("creates user with normalized email", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		svc := newService(t, storage)

		user, err := svc.Register(context.Background(), "  Morpheus ", " Morpheus@Example.COM ", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "Morpheus", user.Nickname)
		assert.Equal(t, "morpheus@example.com", user.Email)
		assert.NotEqual(t, uuid.Nil, user.ID)

		hash := storage.hashes[user.ID]
		require.NotEmpty(t, hash)
		assert.NotContains(t, string(hash), "s3cret-pass")
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, newFakeStorage())
		_, err := svc.Register(context.Background(), "neo", "neo@example.com", "short")
		require.Error(t, err)
	})

	t.Run("rejects missing nickname", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, newFakeStorage())
		_, err := svc.Register(context.Background(), "   ", "neo@example.com", "s3cret-pass")
		require.Error(t, err)
	})
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	setup := func(t *testing.T) (*account.Service, *fakeStorage, *jwt.Service, account.User) {
		t.Helper()
		storage := newFakeStorage()
		tokens, err := jwt.New([]byte("test-secret-at-least-32-bytes-long"))
		require.NoError(t, err)
		svc := account.NewService(storage, tokens, account.WithTokenTTL(time.Hour))

		user, err := svc.Register(context.Background(), "trinity", "trinity@example.com", "s3cret-pass")
		require.NoError(t, err)
		return svc, storage, tokens, user
	}

	t.Run("issues token carrying stored permissions", func(t *testing.T) {
		t.Parallel()

		svc, storage, tokens, user := setup(t)
		storage.permissions[user.ID] = []string{"community.sel.leader", "mission.op-anvil.creator"}

		token, got, err := svc.Login(context.Background(), "trinity@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		var claims jwt.Claims
		require.NoError(t, tokens.Parse(token, &claims))
		assert.Equal(t, user.ID.String(), claims.Subject)
		assert.Equal(t, "trinity", claims.Nickname)
		assert.ElementsMatch(t, []string{"community.sel.leader", "mission.op-anvil.creator"}, claims.Permissions)
	})

	t.Run("wrong password yields invalid credentials", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := setup(t)
		_, _, err := svc.Login(context.Background(), "trinity@example.com", "wrong-pass")
		assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	})

	t.Run("unknown email yields invalid credentials, not not-found", func(t *testing.T) {
		t.Parallel()

		svc, _, _, _ := setup(t)
		_, _, err := svc.Login(context.Background(), "nobody@example.com", "s3cret-pass")
		assert.ErrorIs(t, err, account.ErrInvalidCredentials)
	})
}

func TestService_Account(t *testing.T) {
	t.Parallel()

	newService := func(t *testing.T, storage account.Storage) *account.Service {
		t.Helper()
		tokens, err := jwt.New([]byte("test-secret-at-least-32-bytes-long"))
		require.NoError(t, err)
		return account.NewService(storage, tokens)
	}

	t.Run("returns profile with current grants", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		svc := newService(t, storage)

		user, err := svc.Register(context.Background(), "tank", "tank@example.com", "s3cret-pass")
		require.NoError(t, err)
		storage.permissions[user.ID] = []string{"admin.user"}

		got, grants, err := svc.Account(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, []string{"admin.user"}, grants)
	})

	t.Run("empty grant set is a slice, not nil", func(t *testing.T) {
		t.Parallel()

		storage := newFakeStorage()
		svc := newService(t, storage)

		user, err := svc.Register(context.Background(), "dozer", "dozer@example.com", "s3cret-pass")
		require.NoError(t, err)

		_, grants, err := svc.Account(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NotNil(t, grants)
		assert.Empty(t, grants)
	})

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()

		svc := newService(t, newFakeStorage())
		_, _, err := svc.Account(context.Background(), uuid.New())
		assert.ErrorIs(t, err, account.ErrUserNotFound)
	})
}
