package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/spacehub/internal/accounts/service"
	"github.com/aussiebroadwan/spacehub/pkg/httpx"
	"github.com/aussiebroadwan/spacehub/pkg/slogx"
)

// authenticator adapts service.Authorizer to httpx.AuthnMiddleware.
type authenticator struct {
	authz *service.Authorizer
}

func (a authenticator) Authenticate(ctx context.Context, raw string) (httpx.Principal, error) {
	acct, err := a.authz.Authenticate(ctx, raw)
	if err != nil {
		return httpx.Principal{}, err
	}
	return httpx.Principal{ID: acct.ID, Role: string(acct.Role)}, nil
}

// principalFrom returns the caller set by AuthnMiddleware. Routes that call
// it are always wrapped in AuthnMiddleware.
func principalFrom(ctx context.Context) (httpx.Principal, error) {
	p, ok := httpx.PrincipalFrom(ctx)
	if !ok || p.ID == "" {
		return httpx.Principal{}, service.ErrUnauthenticated
	}
	return p, nil
}

// scopeLogger tags the request logger with the authenticated account.
func scopeLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := httpx.PrincipalFrom(r.Context()); ok {
			r = r.WithContext(slogx.WithAccount(r.Context(), p.ID, p.Role))
		}
		next.ServeHTTP(w, r)
	})
}
