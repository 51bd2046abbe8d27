package httpx

import (
	"net/http"
	"slices"
)

// RestrictTo lets a request through only when the authenticated principal
// holds one of roles. It must run after AuthnMiddleware; a request without a
// principal is answered 401, a principal with the wrong role 403.
func RestrictTo(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				WriteBearerError(w, "missing bearer token")
				return
			}
			if !slices.Contains(roles, p.Role) {
				WriteError(w, http.StatusForbidden, "forbidden", "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
