package auth

import (
	"context"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/nexatech/crm-backend/internal/apperror"
	"github.com/nexatech/crm-backend/internal/modules/employee"
	"github.com/nexatech/crm-backend/internal/modules/identity"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	UserID  int64  `json:"user_id"`
	Role    string `json:"role"`
	StoreID *int64 `json:"store_id,omitempty"`
	jwt.StandardClaims
}

type service struct {
	employeeRepo employee.Repository
	jwtKey       []byte
}

// NewService creates a new auth service signing tokens with jwtSecret.
func NewService(employeeRepo employee.Repository, jwtSecret string) Service {
	return &service{employeeRepo: employeeRepo, jwtKey: []byte(jwtSecret)}
}

func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Validationf("email and password are required")
	}

	emp, err := s.employeeRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Forbiddenf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Forbiddenf("invalid credentials")
	}

	claims := &Claims{
		UserID:  emp.EmployeeID,
		Role:    string(emp.Role),
		StoreID: emp.StoreID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(7 * 24 * time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtKey)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: signed, User: emp}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*employee.Employee, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if len(name) < 2 || len(name) > 120 {
		return nil, apperror.Validationf("name must be between 2 and 120 characters")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperror.Validationf("a valid email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperror.Validationf("password must be at least 8 characters")
	}

	exists, err := s.employeeRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflictf("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	// New accounts always start as sales; other roles are granted by admins.
	emp := &employee.Employee{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         identity.RoleSales,
		StoreID:      req.StoreID,
	}
	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}
