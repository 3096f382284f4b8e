package employee

import (
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Employee is a member of the sales organisation.
type Employee struct {
	EmployeeID   int64         `json:"employee_id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         identity.Role `json:"role"`
	StoreID      *int64        `json:"store_id"`
}

// Store is a retail outlet an employee can belong to.
type Store struct {
	StoreID int64  `json:"store_id"`
	Name    string `json:"name"`
}

// ListFilter narrows the employee directory.
type ListFilter struct {
	SalesOnly bool
	StoreID   *int64
	Query     string
}
