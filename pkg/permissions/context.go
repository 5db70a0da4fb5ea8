package permissions

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

func (c contextKey) String() string { return c.name }

var grantsContextKey = &contextKey{name: "permission_grants"}

// SetGrants stores the caller's granted permission strings in the context.
// The auth layer calls this once per request after token verification.
func SetGrants(ctx context.Context, grants []string) context.Context {
	return context.WithValue(ctx, grantsContextKey, grants)
}

// GetGrants returns the granted permission strings from the context.
// The second return value is false when no authenticated grant set is
// present, which guarded routes translate into 401 before evaluation.
func GetGrants(ctx context.Context) ([]string, bool) {
	grants, ok := ctx.Value(grantsContextKey).([]string)
	return grants, ok
}
