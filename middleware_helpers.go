package auth

import (
	"context"

	"github.com/gunung/portal-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// GrantContextEnricher stores a *Grant produced by the gate in the request
// context. Anything else is ignored.
func GrantContextEnricher(ctx context.Context, grant any) context.Context {
	g, ok := grant.(*Grant)
	if !ok || g == nil {
		return ctx
	}
	return WithGrantContext(ctx, g)
}

// RegisterValidationListeners appends listeners to a jwtware.Config
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
