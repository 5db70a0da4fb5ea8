package permissions_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
)

func testGuard() *permissions.Guard {
	return permissions.NewGuard(
		permissions.WithGuardLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// grantsMiddleware injects a fixed grant set, standing in for the auth layer.
func grantsMiddleware(grants []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(permissions.SetGrants(r.Context(), grants)))
		})
	}
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func TestGuard_RequireAny(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		grants   []string
		target   string
		expected int
	}{
		{
			name:     "matching grant passes",
			grants:   []string{"community.sel.leader"},
			target:   "/communities/sel",
			expected: http.StatusOK,
		},
		{
			name:     "other slug is denied",
			grants:   []string{"community.sel.leader"},
			target:   "/communities/luchs",
			expected: http.StatusForbidden,
		},
		{
			name:     "superadmin passes everywhere",
			grants:   []string{"admin.superadmin"},
			target:   "/communities/luchs",
			expected: http.StatusOK,
		},
		{
			name:     "global wildcard passes everywhere",
			grants:   []string{"*"},
			target:   "/communities/luchs",
			expected: http.StatusOK,
		},
		{
			name:     "empty grant set is denied",
			grants:   []string{},
			target:   "/communities/sel",
			expected: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := chi.NewRouter()
			r.Use(grantsMiddleware(tt.grants))
			r.With(testGuard().RequireAny(
				"community.{{communitySlug}}.founder",
				"community.{{communitySlug}}.leader",
			)).Put("/communities/{communitySlug}", okHandler)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, tt.target, nil))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}
}

func TestGuard_RequireAll(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	r.Use(grantsMiddleware([]string{"community.sel.founder"}))
	r.With(testGuard().RequireAll(
		"community.{{communitySlug}}.founder",
		"community.{{communitySlug}}.leader",
	)).Delete("/communities/{communitySlug}", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/communities/sel", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGuard_Unauthenticated(t *testing.T) {
	t.Parallel()

	// No grants in context at all: 401, not 403.
	r := chi.NewRouter()
	r.With(testGuard().RequireAny("admin.announcement")).Get("/announcements", okHandler)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/announcements", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestGrantsContext(t *testing.T) {
	t.Parallel()

	_, ok := permissions.GetGrants(context.Background())
	assert.False(t, ok)

	ctx := permissions.SetGrants(context.Background(), []string{"community.sel.leader"})
	grants, ok := permissions.GetGrants(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"community.sel.leader"}, grants)
}
