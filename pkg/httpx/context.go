package httpx

import "context"

type ctxKey string

const CtxKeyPrincipal ctxKey = "principal"

// Principal is the authenticated caller as resolved by an Authenticator.
type Principal struct {
	ID   string
	Role string
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, CtxKeyPrincipal, p)
}

// PrincipalFrom returns the caller stored by AuthnMiddleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(CtxKeyPrincipal).(Principal)
	return p, ok
}
