package reminder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nexatech/crm-backend/internal/apperror"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Service exposes retail reminder reads and acknowledgements.
type Service interface {
	// ListRetail returns open reminders visible to the principal: their
	// own assigned leads for sales, the whole domain for managers.
	ListRetail(ctx context.Context, p identity.Principal) ([]*RetailReminder, error)

	// MarkDone acknowledges a retail reminder.
	MarkDone(ctx context.Context, p identity.Principal, reminderID int64) error
}

type service struct {
	repo Repository
}

// NewService creates a new retail reminder service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) ListRetail(ctx context.Context, p identity.Principal) ([]*RetailReminder, error) {
	var (
		reminders []*RetailReminder
		err       error
	)
	switch {
	case p.Role == identity.RoleSales:
		reminders, err = s.repo.ListForSales(ctx, p.EmployeeID)
	case p.IsManager():
		domain, ok := identity.ManagerDomain(p.Role)
		if !ok {
			// corporate managers have no retail reminder feed
			return []*RetailReminder{}, nil
		}
		reminders, err = s.repo.ListForDomain(ctx, domain)
	default:
		return []*RetailReminder{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list retail reminders: %w", err)
	}
	if reminders == nil {
		reminders = []*RetailReminder{}
	}
	return reminders, nil
}

func (s *service) MarkDone(ctx context.Context, p identity.Principal, reminderID int64) error {
	if reminderID == 0 {
		return apperror.Validationf("reminder_id is required")
	}
	err := s.repo.MarkDone(ctx, reminderID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFoundf("Reminder not found")
	}
	if err != nil {
		return fmt.Errorf("mark reminder done: %w", err)
	}
	return nil
}
