package corporate

import (
	"context"
	"time"
)

// AckOutcome reports what acknowledging a reminder did.
type AckOutcome struct {
	// AlreadyDone is true when the reminder had been acknowledged before;
	// the operation is then a no-op.
	AlreadyDone bool
	// Respawned is true when a successor lead_checkin reminder was created.
	Respawned bool
}

// Repository defines data access for corporate leads. Methods taking a
// managerID enforce ownership scoping; multi-row writes are transactional.
type Repository interface {
	// CreateLead persists the lead, its initial history entry, and the
	// first lead_checkin reminder (three days out) atomically.
	CreateLead(ctx context.Context, lead *Lead) error

	// GetLead retrieves one owned lead without items. sql.ErrNoRows when
	// absent or owned by someone else.
	GetLead(ctx context.Context, managerID, leadID int64) (*Lead, error)

	// List returns one page of owned leads plus the unpaged total, newest
	// first.
	List(ctx context.Context, managerID int64, filter ListFilter) ([]*Lead, int, error)

	// ListItems returns a lead's bill-of-material lines in id order.
	ListItems(ctx context.Context, leadID int64) ([]*Item, error)

	// UpdateLead applies the patch and, when patch.Status is set, appends a
	// history entry in the same transaction. Returns the updated lead.
	UpdateLead(ctx context.Context, managerID, leadID int64, patch LeadPatch, notes *string, actor int64) (*Lead, error)

	// AddItem inserts a bill-of-material line, filling in item.ItemID.
	AddItem(ctx context.Context, item *Item) error

	// UpdateItem applies the patch to an owned lead's item and refreshes
	// last_updated. sql.ErrNoRows when the item is not visible to managerID.
	UpdateItem(ctx context.Context, managerID, itemID int64, patch ItemPatch) (*Item, error)

	// CloseLead stamps the terminal status and closed_date, appends the
	// history entry, and schedules the follow_up reminder (seven days out),
	// all in one transaction.
	CloseLead(ctx context.Context, managerID, leadID int64, status Status, note *string, actor int64) error

	// AddQuote inserts the quote and refreshes the lead's
	// last_quoted_value/last_quoted_at atomically.
	AddQuote(ctx context.Context, quote *Quote) error

	// ListQuotes returns a lead's quotes, newest first.
	ListQuotes(ctx context.Context, leadID int64) ([]*Quote, error)

	// ListHistory returns an owned lead's history, newest first.
	ListHistory(ctx context.Context, managerID, leadID int64) ([]*HistoryEntry, error)

	// ListReminders returns open reminders on owned leads due within the
	// window, ordered by remind_at.
	ListReminders(ctx context.Context, managerID int64, window time.Duration, dueOnly bool) ([]*Reminder, error)

	// AckReminder locks the reminder row, marks it done, and spawns the
	// next lead_checkin when the parent lead is still open. The row lock
	// serializes concurrent acknowledgements so a reminder spawns at most
	// one successor.
	AckReminder(ctx context.Context, managerID, reminderID int64) (AckOutcome, error)

	// InsertDocument records an uploaded proposal, filling in doc.DocID.
	InsertDocument(ctx context.Context, doc *Document) error

	// ListDocuments returns an owned lead's proposals, newest first.
	ListDocuments(ctx context.Context, managerID, leadID int64) ([]*Document, error)
}
