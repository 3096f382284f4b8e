package auth

import (
	"context"

	"github.com/nexatech/crm-backend/internal/modules/employee"
)

// LoginResult carries the signed token and the employee it identifies.
type LoginResult struct {
	Token string             `json:"token"`
	User  *employee.Employee `json:"user"`
}

// RegisterRequest is the payload for creating a new employee account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	StoreID  *int64 `json:"store_id,omitempty"`
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) (*employee.Employee, error)
}
