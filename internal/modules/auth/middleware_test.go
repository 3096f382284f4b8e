package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

func signToken(t *testing.T, secret string, claims *Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims(role string) *Claims {
	return &Claims{
		UserID: 3,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
}

func TestRequireAuth(t *testing.T) {
	m := NewMiddleware(testSecret)
	var seen identity.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = identity.FromContext(r.Context())
	})

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong key", "Bearer " + signToken(t, "other-secret", validClaims("sales")), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, &Claims{
			UserID: 3, Role: "sales",
			StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Hour).Unix()},
		}), http.StatusUnauthorized},
		{"unknown role", "Bearer " + signToken(t, testSecret, validClaims("intern")), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, testSecret, validClaims("sales")), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			m.RequireAuth(next).ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}

	if seen.EmployeeID != 3 || seen.Role != identity.RoleSales {
		t.Errorf("expected principal from valid token, got %+v", seen)
	}
}

func TestRequireRole(t *testing.T) {
	m := NewMiddleware(testSecret)
	handler := m.RequireAuth(identity.RequireRole(identity.RoleCorporateManager)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("sales")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for sales, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims("corporate_manager")))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for corporate manager, got %d", rec.Code)
	}
}
