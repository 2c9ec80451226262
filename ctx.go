package auth

import (
	"context"
)

var grantCtxKey = &contextKey{"grant"}

type contextKey struct {
	name string
}

// WithGrantContext stores the authorization grant in ctx
func WithGrantContext(ctx context.Context, grant *Grant) context.Context {
	return context.WithValue(ctx, grantCtxKey, grant)
}

// GrantFromContext returns the grant stored by the gate middleware
func GrantFromContext(ctx context.Context) (*Grant, bool) {
	if ctx == nil {
		return nil, false
	}
	grant, ok := ctx.Value(grantCtxKey).(*Grant)
	return grant, ok && grant != nil
}

// GetClaims extracts the verified claims from ctx
func GetClaims(ctx context.Context) (*JWTClaims, bool) {
	grant, ok := GrantFromContext(ctx)
	if !ok || grant.Claims == nil {
		return nil, false
	}
	return grant.Claims, true
}

// FromContext returns the resolved user, when the requirement loaded one
func FromContext(ctx context.Context) (*User, bool) {
	grant, ok := GrantFromContext(ctx)
	if !ok || grant.User == nil {
		return nil, false
	}
	return grant.User, true
}
