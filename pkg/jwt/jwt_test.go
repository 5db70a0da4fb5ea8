package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotlist/slotlist-backend-sub000/pkg/jwt"
	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
)

const testSigningKey = "test-signing-key-with-enough-bytes"

func newTestService(t *testing.T) *jwt.Service {
	t.Helper()
	svc, err := jwt.New([]byte(testSigningKey))
	require.NoError(t, err)
	return svc
}

func TestNew_RequiresKey(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)
}

func TestGenerateAndParse(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	issued := jwt.Claims{
		Subject:     "9f2c7f6a-1f62-4a13-9f3c-111111111111",
		Nickname:    "JohnDoe",
		Permissions: []string{"community.sel.leader", "mission.all-of-altis.creator"},
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
		IssuedAt:    time.Now().Unix(),
	}

	token, err := svc.Generate(issued)
	require.NoError(t, err)

	var parsed jwt.Claims
	require.NoError(t, svc.Parse(token, &parsed))
	assert.Equal(t, issued, parsed)
}

func TestParse_Failures(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	t.Run("malformed token", func(t *testing.T) {
		t.Parallel()
		var claims jwt.Claims
		assert.ErrorIs(t, svc.Parse("not-a-token", &claims), jwt.ErrInvalidToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		t.Parallel()
		token, err := svc.Generate(jwt.Claims{Subject: "user"})
		require.NoError(t, err)

		var claims jwt.Claims
		assert.ErrorIs(t, svc.Parse(token+"x", &claims), jwt.ErrInvalidSignature)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New([]byte("a-completely-different-signing-key"))
		require.NoError(t, err)
		token, err := other.Generate(jwt.Claims{Subject: "user"})
		require.NoError(t, err)

		var claims jwt.Claims
		assert.ErrorIs(t, svc.Parse(token, &claims), jwt.ErrInvalidSignature)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		token, err := svc.Generate(jwt.Claims{
			Subject:   "user",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		})
		require.NoError(t, err)

		var claims jwt.Claims
		assert.ErrorIs(t, svc.Parse(token, &claims), jwt.ErrExpiredToken)
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	var gotGrants []string
	var gotOK bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotGrants, gotOK = permissions.GetGrants(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token passes with grants in context", func(t *testing.T) {
		token, err := svc.Generate(jwt.Claims{
			Subject:     "user",
			Permissions: []string{"community.sel.leader"},
			ExpiresAt:   time.Now().Add(time.Hour).Unix(),
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		jwt.Middleware(svc)(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, gotOK)
		assert.Equal(t, []string{"community.sel.leader"}, gotGrants)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		jwt.Middleware(svc)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		jwt.Middleware(svc)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty permission claim becomes empty grant set", func(t *testing.T) {
		token, err := svc.Generate(jwt.Claims{
			Subject:   "user",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		jwt.Middleware(svc)(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, gotOK)
		assert.Empty(t, gotGrants)
	})
}

func TestOptional(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, authed := jwt.GetClaims(r.Context())
		if authed {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("anonymous request passes without claims", func(t *testing.T) {
		rec := httptest.NewRecorder()
		jwt.Optional(svc)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("invalid token is still rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		jwt.Optional(svc)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
