package employee

import "context"

// Service exposes the employee and store directory.
type Service interface {
	// ListEmployees returns the directory narrowed by filter.
	ListEmployees(ctx context.Context, filter ListFilter) ([]*Employee, error)

	// ListStores returns all stores.
	ListStores(ctx context.Context) ([]*Store, error)
}

type service struct {
	repo Repository
}

// NewService creates a new directory service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListEmployees(ctx context.Context, filter ListFilter) ([]*Employee, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListStores(ctx context.Context) ([]*Store, error) {
	return s.repo.ListStores(ctx)
}
