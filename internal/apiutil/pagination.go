package apiutil

import (
	"net/http"
	"strconv"
)

const (
	defaultPageLimit = 25
	maxPageLimit     = 100
)

// Pagination is the limit/offset pair parsed from list-endpoint queries.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads "limit" and "offset" query parameters, falling back
// to defaults and clamping the limit. Invalid values degrade to defaults
// rather than failing the request.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{Limit: defaultPageLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			p.Limit = min(limit, maxPageLimit)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			p.Offset = offset
		}
	}

	return p
}
