package retail

import (
	"context"

	"github.com/nexatech/crm-backend/internal/modules/identity"
	"github.com/shopspring/decimal"
)

// Repository defines data access for retail leads. Every method that writes
// more than one row does so inside a single transaction.
type Repository interface {
	// CreateLead persists the lead, its items, and the initial "New" history
	// entry atomically, filling in lead.LeadID.
	CreateLead(ctx context.Context, lead *Lead, items []*LeadItem) error

	// GetLead retrieves one lead without items or history. Returns
	// sql.ErrNoRows when absent.
	GetLead(ctx context.Context, leadID int64) (*Lead, error)

	// ListItems returns a lead's items ordered by id.
	ListItems(ctx context.Context, leadID int64) ([]*LeadItem, error)

	// ListHistory returns a lead's status history, newest first, with the
	// updating employee's name resolved.
	ListHistory(ctx context.Context, leadID int64) ([]*HistoryEntry, error)

	// HasItemsOutside reports whether the lead has any item whose category
	// differs from domain.
	HasItemsOutside(ctx context.Context, leadID int64, domain identity.Category) (bool, error)

	// AssignLead reads the current assignee and writes the new one in the
	// same transaction, appends the "Assigned" history entry, and inserts a
	// transfer record iff a distinct non-null prior assignee existed.
	// Reports whether the operation was a transfer.
	AssignLead(ctx context.Context, leadID, assignedTo, assignedBy int64, reason *string) (bool, error)

	// UpdateStatus mutates the lead's status and appends the history entry
	// atomically. Closing statuses stamp closed_date; valueClosed is applied
	// only for Closed Won and never clears an existing value.
	UpdateStatus(ctx context.Context, leadID int64, status Status, valueClosed *decimal.Decimal, notes *string, actor int64) error

	// List compiles filter into a predicate and returns one page of leads
	// plus the unpaged total, ordered enquiry_date desc then lead_id desc.
	List(ctx context.Context, filter ListFilter) ([]*Lead, int, error)

	// ListTransfers returns a lead's transfer records, newest first.
	ListTransfers(ctx context.Context, leadID int64) ([]*Transfer, error)
}
