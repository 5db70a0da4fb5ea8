package apiutil_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotlist/slotlist-backend-sub000/internal/apiutil"
)

func TestError(t *testing.T) {
	t.Parallel()

	t.Run("http error keeps status and key", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		apiutil.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), apiutil.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"not_found"}`, rec.Body.String())
	})

	t.Run("wrapped http error is unwrapped", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		err := errors.Join(apiutil.ErrConflict, errors.New("duplicate slug"))
		apiutil.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown error becomes 500 without detail", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		apiutil.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pgx: connection refused"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "pgx")
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	type payload struct {
		Title string `json:"title"`
	}

	t.Run("valid body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":"Op Dawn"}`))
		var p payload
		require.NoError(t, apiutil.Decode(req, &p))
		assert.Equal(t, "Op Dawn", p.Title)
	})

	t.Run("unknown field fails", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope":1}`))
		var p payload
		err := apiutil.Decode(req, &p)
		assert.ErrorIs(t, err, apiutil.ErrBadRequest)
	})

	t.Run("malformed body fails", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		var p payload
		assert.ErrorIs(t, apiutil.Decode(req, &p), apiutil.ErrBadRequest)
	})
}

func TestParsePagination(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		query    string
		expected apiutil.Pagination
	}{
		{"defaults", "", apiutil.Pagination{Limit: 25}},
		{"explicit", "limit=10&offset=30", apiutil.Pagination{Limit: 10, Offset: 30}},
		{"clamped limit", "limit=1000", apiutil.Pagination{Limit: 100}},
		{"garbage degrades to defaults", "limit=abc&offset=-5", apiutil.Pagination{Limit: 25}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			assert.Equal(t, tt.expected, apiutil.ParsePagination(req))
		})
	}
}
