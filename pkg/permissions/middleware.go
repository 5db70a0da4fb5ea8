package permissions

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Guard builds route middleware that evaluates permission patterns against
// the grants stored in the request context. Patterns may reference chi route
// parameters via "{{paramName}}".
type Guard struct {
	logger *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithGuardLogger sets the logger used for audit logging of denials.
func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard creates a Guard. Without options denials are logged to the
// default slog logger.
func NewGuard(opts ...GuardOption) *Guard {
	g := &Guard{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequireAny returns middleware that allows the request when ANY of the
// given patterns is satisfied by the caller's grants.
func (g *Guard) RequireAny(patterns ...string) func(http.Handler) http.Handler {
	return g.require(patterns, false)
}

// RequireAll returns middleware that allows the request only when ALL of
// the given patterns are satisfied (strict mode).
func (g *Guard) RequireAll(patterns ...string) func(http.Handler) http.Handler {
	return g.require(patterns, true)
}

func (g *Guard) require(patterns []string, strict bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Missing grants means the caller never authenticated; that is
			// the auth layer's 401, not a permission denial.
			grants, ok := GetGrants(r.Context())
			if !ok {
				writeDenial(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			dec := Evaluate(grants, patterns, routeParams(r), strict)
			if !dec.Allowed {
				g.logger.LogAttrs(r.Context(), slog.LevelInfo, "permission denied",
					slog.String("path", r.URL.Path),
					slog.Any("required", patterns),
					slog.Any("matched", dec.Matched),
					slog.Bool("strict", strict),
				)
				writeDenial(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// routeParams collects the chi URL parameters of the current route into the
// string map consumed by Resolve.
func routeParams(r *http.Request) map[string]string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.URLParams.Keys) == 0 {
		return nil
	}

	params := make(map[string]string, len(rctx.URLParams.Keys))
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}

func writeDenial(w http.ResponseWriter, status int, key string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": key})
}
