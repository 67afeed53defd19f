package auth

import "context"

// contextKey is a private type for context keys so this package's values
// cannot collide with keys set elsewhere.
type contextKey string

const principalContextKey contextKey = "auth_principal"

// NewContextWithPrincipal returns a child context carrying the principal.
// The middleware calls this exactly once per authenticated request.
func NewContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext extracts the principal stored by the middleware. The
// second return value is false when the request was not authenticated; there
// is no anonymous default.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*Principal)
	return p, ok
}
