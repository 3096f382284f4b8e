package reminder

import (
	"context"
	"time"

	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Repository defines data access for retail reminders and the daily sweeps.
type Repository interface {
	// ListForSales returns open reminders on leads assigned to the
	// employee, newest first.
	ListForSales(ctx context.Context, employeeID int64) ([]*RetailReminder, error)

	// ListForDomain returns open reminders on leads carrying at least one
	// item in the category, newest first.
	ListForDomain(ctx context.Context, category identity.Category) ([]*RetailReminder, error)

	// MarkDone acknowledges a retail reminder.
	MarkDone(ctx context.Context, reminderID int64) error

	// SweepUntouchedRetail raises a reminder for every open retail lead
	// with no status activity in the three days before now. Leads that
	// already got an open reminder today are skipped, so reruns on the
	// same day insert nothing. Returns the number of reminders raised.
	SweepUntouchedRetail(ctx context.Context, now time.Time) (int64, error)

	// SweepCorporateFollowUps raises a follow_up reminder for every
	// corporate lead closed exactly seven days before now, skipping leads
	// that already got one today. Returns the number raised.
	SweepCorporateFollowUps(ctx context.Context, now time.Time) (int64, error)
}
