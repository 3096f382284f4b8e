package auth

import (
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/nexatech/crm-backend/internal/httpx"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Middleware resolves a Principal from the bearer token on each request.
type Middleware struct {
	jwtKey []byte
}

// NewMiddleware creates auth middleware verifying tokens with jwtSecret.
func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtKey: []byte(jwtSecret)}
}

// RequireAuth parses the Authorization header and attaches the principal to
// the request context. Requests without a valid token are rejected.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
			func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return m.jwtKey, nil
			})
		if err != nil || !token.Valid {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		role, ok := identity.ParseRole(claims.Role)
		if !ok {
			httpx.JSONError(w, http.StatusUnauthorized, "unknown role")
			return
		}

		p := identity.Principal{
			EmployeeID: claims.UserID,
			Role:       role,
			StoreID:    claims.StoreID,
		}
		next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), p)))
	})
}
