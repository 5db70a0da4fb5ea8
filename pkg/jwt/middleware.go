package jwt

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/slotlist/slotlist-backend-sub000/pkg/permissions"
)

// Middleware verifies the Bearer token on every request and rejects requests
// without a valid one. Verified claims and the caller's permission grants
// are placed in the request context.
func Middleware(service *Service) func(next http.Handler) http.Handler {
	return middleware(service, true)
}

// Optional verifies the Bearer token when one is present but lets anonymous
// requests through without claims in context. Guarded routes further down
// still reject those with 401.
func Optional(service *Service) func(next http.Handler) http.Handler {
	return middleware(service, false)
}

func middleware(service *Service, required bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				if required {
					writeUnauthorized(w)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			var claims Claims
			if err := service.Parse(tokenString, &claims); err != nil {
				writeUnauthorized(w)
				return
			}

			ctx := SetClaims(r.Context(), claims)
			// Absent permissions still count as an authenticated empty grant
			// set: guarded routes answer 403 rather than 401.
			grants := claims.Permissions
			if grants == nil {
				grants = []string{}
			}
			ctx = permissions.SetGrants(ctx, grants)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
