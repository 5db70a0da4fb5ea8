package apiutil

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/slotlist/slotlist-backend-sub000/pkg/jwt"
)

// CallerID returns the authenticated caller's user ID from the verified
// token claims. Returns ErrUnauthorized for anonymous requests or claims
// with a malformed subject.
func CallerID(r *http.Request) (uuid.UUID, error) {
	claims, ok := jwt.GetClaims(r.Context())
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}
