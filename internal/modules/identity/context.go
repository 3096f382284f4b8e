package identity

import (
	"context"
	"net/http"

	"github.com/nexatech/crm-backend/internal/httpx"
)

type contextKey struct{}

// WithPrincipal attaches a principal to the request context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext retrieves the principal resolved by the auth middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// RequireRole rejects requests whose principal is not one of the given roles.
// It assumes the auth middleware has already run.
func RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.JSONError(w, http.StatusForbidden, "Forbidden")
		})
	}
}
