package employee

import "context"

// Repository defines data access for employees and stores.
type Repository interface {
	// GetByEmail retrieves one employee by normalized email.
	GetByEmail(ctx context.Context, email string) (*Employee, error)

	// Create persists a new employee and returns it with its id.
	Create(ctx context.Context, e *Employee) error

	// EmailExists reports whether an employee with this email already exists.
	EmailExists(ctx context.Context, email string) (bool, error)

	// List returns the employee directory narrowed by filter.
	List(ctx context.Context, filter ListFilter) ([]*Employee, error)

	// ListStores returns all stores ordered by name.
	ListStores(ctx context.Context) ([]*Store, error)
}
