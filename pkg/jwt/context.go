package jwt

import "context"

// contextKey is a private type for context keys to avoid collisions.
type contextKey struct{ name string }

func (c contextKey) String() string { return c.name }

var claimsContextKey = &contextKey{name: "jwt_claims"}

// SetClaims stores the verified token claims in the context.
func SetClaims(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaims returns the verified token claims from the context.
// The second return value is false for anonymous requests.
func GetClaims(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(Claims)
	return claims, ok
}
