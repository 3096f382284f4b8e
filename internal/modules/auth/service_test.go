package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/nexatech/crm-backend/internal/apperror"
	"github.com/nexatech/crm-backend/internal/modules/employee"
	"github.com/nexatech/crm-backend/internal/modules/identity"
	"golang.org/x/crypto/bcrypt"
)

type fakeEmployeeRepo struct {
	nextID    int64
	employees map[string]*employee.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{nextID: 1, employees: map[string]*employee.Employee{}}
}

func (f *fakeEmployeeRepo) GetByEmail(ctx context.Context, email string) (*employee.Employee, error) {
	emp, ok := f.employees[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e *employee.Employee) error {
	e.EmployeeID = f.nextID
	f.nextID++
	f.employees[e.Email] = e
	return nil
}

func (f *fakeEmployeeRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, ok := f.employees[email]
	return ok, nil
}

func (f *fakeEmployeeRepo) List(ctx context.Context, filter employee.ListFilter) ([]*employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) ListStores(ctx context.Context) ([]*employee.Store, error) {
	return nil, nil
}

const testSecret = "test-secret"

func register(t *testing.T, s Service, email, password string) *employee.Employee {
	t.Helper()
	emp, err := s.Register(context.Background(), RegisterRequest{
		Name:     "Asha Nair",
		Email:    email,
		Password: password,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return emp
}

func TestRegisterAndLogin(t *testing.T) {
	s := NewService(newFakeEmployeeRepo(), testSecret)
	emp := register(t, s, "asha@nexatech.in", "s3cret-pass")

	if emp.Role != identity.RoleSales {
		t.Errorf("new accounts must start as sales, got %s", emp.Role)
	}
	if emp.PasswordHash == "s3cret-pass" {
		t.Error("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	result, err := s.Login(context.Background(), "Asha@Nexatech.in", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" || result.User.EmployeeID != emp.EmployeeID {
		t.Errorf("unexpected login result: %+v", result)
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(result.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != emp.EmployeeID || claims.Role != "sales" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := NewService(newFakeEmployeeRepo(), testSecret)
	register(t, s, "asha@nexatech.in", "s3cret-pass")
	ctx := context.Background()

	if _, err := s.Login(ctx, "asha@nexatech.in", "wrong-pass"); !apperror.IsKind(err, apperror.KindForbidden) {
		t.Errorf("expected forbidden for wrong password, got %v", err)
	}
	if _, err := s.Login(ctx, "nobody@nexatech.in", "s3cret-pass"); !apperror.IsKind(err, apperror.KindForbidden) {
		t.Errorf("expected forbidden for unknown email, got %v", err)
	}
	if _, err := s.Login(ctx, "", ""); !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("expected validation error for empty credentials, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := NewService(newFakeEmployeeRepo(), testSecret)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"short name", RegisterRequest{Name: "A", Email: "a@b.in", Password: "longenough"}},
		{"bad email", RegisterRequest{Name: "Asha", Email: "not-an-email", Password: "longenough"}},
		{"short password", RegisterRequest{Name: "Asha", Email: "a@b.in", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Register(ctx, tc.req); !apperror.IsKind(err, apperror.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := NewService(newFakeEmployeeRepo(), testSecret)
	register(t, s, "asha@nexatech.in", "s3cret-pass")

	_, err := s.Register(context.Background(), RegisterRequest{
		Name:     "Another Asha",
		Email:    "ASHA@nexatech.in",
		Password: "otherpassword",
	})
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}
}
