package retail

import (
	"time"

	"github.com/nexatech/crm-backend/internal/modules/identity"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a retail lead.
type Status string

const (
	StatusNew        Status = "New"
	StatusAssigned   Status = "Assigned"
	StatusInProgress Status = "In Progress"
	StatusClosedWon  Status = "Closed Won"
	StatusClosedLost Status = "Closed Lost"
)

// ParseStatus validates a status string against the closed set.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusNew, StatusAssigned, StatusInProgress, StatusClosedWon, StatusClosedLost:
		return Status(s), true
	}
	return "", false
}

// IsClosing reports whether s is a terminal state.
func (s Status) IsClosing() bool {
	return s == StatusClosedWon || s == StatusClosedLost
}

// Lead is a prospective retail sale tracked through its status lifecycle.
type Lead struct {
	LeadID        int64            `json:"lead_id"`
	StoreID       *int64           `json:"store_id"`
	Name          string           `json:"name"`
	ContactNumber string           `json:"contact_number"`
	Email         *string          `json:"email"`
	Source        *string          `json:"source"`
	SourceDetail  *string          `json:"source_detail,omitempty"`
	EnquiryDate   time.Time        `json:"enquiry_date"`
	CreatedBy     int64            `json:"created_by"`
	AssignedTo    *int64           `json:"assigned_to"`
	AssignedBy    *int64           `json:"assigned_by"`
	Status        Status           `json:"status"`
	ValueClosed   *decimal.Decimal `json:"value_closed"`
	ClosedDate    *time.Time       `json:"closed_date"`
}

// LeadItem is a single product line within a lead. All of a lead's items
// determine which manager domain may act on it.
type LeadItem struct {
	LeadItemID      int64             `json:"lead_item_id"`
	LeadID          int64             `json:"lead_id"`
	ItemDescription *string           `json:"item_description"`
	Category        identity.Category `json:"category"`
	Brand           string            `json:"brand"`
	Quantity        int               `json:"quantity"`
}

// HistoryEntry is one append-only record of a status-affecting mutation.
type HistoryEntry struct {
	StatusID        int64     `json:"status_id"`
	LeadID          int64     `json:"lead_id,omitempty"`
	Status          Status    `json:"status"`
	Notes           *string   `json:"notes"`
	UpdatedBy       int64     `json:"updated_by"`
	UpdatedByName   *string   `json:"updated_by_name,omitempty"`
	UpdateTimestamp time.Time `json:"update_timestamp"`
}

// Transfer records a genuine reassignment between two distinct employees.
type Transfer struct {
	ID             int64     `json:"id"`
	LeadID         int64     `json:"lead_id,omitempty"`
	FromEmployeeID int64     `json:"from_id"`
	FromName       *string   `json:"from_name,omitempty"`
	ToEmployeeID   int64     `json:"to_id"`
	ToName         *string   `json:"to_name,omitempty"`
	TransferReason *string   `json:"transfer_reason"`
	TransferDate   time.Time `json:"transfer_date"`
}

// ItemRequest is one item line in a lead creation payload.
type ItemRequest struct {
	ItemDescription *string `json:"item_description"`
	Category        string  `json:"category"`
	Brand           string  `json:"brand"`
	Quantity        int     `json:"quantity"`
}

// CreateLeadRequest is the payload for creating a new retail lead.
type CreateLeadRequest struct {
	StoreID       *int64        `json:"store_id"`
	Name          string        `json:"name"`
	ContactNumber string        `json:"contact_number"`
	Email         *string       `json:"email"`
	Source        *string       `json:"source"`
	SourceDetail  *string       `json:"source_detail"`
	Items         []ItemRequest `json:"items"`
}

// AssignRequest is the payload for assigning or transferring a lead.
type AssignRequest struct {
	LeadID         int64   `json:"lead_id"`
	AssignedTo     int64   `json:"assigned_to"`
	TransferReason *string `json:"transfer_reason"`
}

// AssignResult reports whether the operation was a transfer between two
// previously-assigned employees.
type AssignResult struct {
	OK          bool `json:"ok"`
	Transferred bool `json:"transferred"`
}

// UpdateStatusRequest is the payload for moving a lead through its lifecycle.
type UpdateStatusRequest struct {
	LeadID      int64            `json:"lead_id"`
	Status      string           `json:"status"`
	Notes       *string          `json:"notes"`
	ValueClosed *decimal.Decimal `json:"value_closed"`
}

// ListFilter is the typed query contract compiled into a predicate by the
// persistence layer.
type ListFilter struct {
	AssignedTo     *int64
	CreatedBy      *int64
	AssignedBy     *int64
	Status         *Status
	Source         string
	Query          string
	DateFrom       *time.Time
	DateTo         *time.Time
	UnassignedOnly bool

	// Domain restricts results to leads containing no item outside the
	// category. For manager principals the service forces their own domain.
	Domain *identity.Category

	// SalesSelf restricts results to leads assigned to or created by this
	// employee; the service sets it for sales principals.
	SalesSelf *int64

	Limit  int
	Offset int
}

// LeadPage is one page of leads with the unpaged total.
type LeadPage struct {
	Total int     `json:"total"`
	Data  []*Lead `json:"data"`
}

// LeadDetail is a lead with its items and full status history.
type LeadDetail struct {
	Lead    *Lead           `json:"lead"`
	Items   []*LeadItem     `json:"items"`
	History []*HistoryEntry `json:"history"`
}
