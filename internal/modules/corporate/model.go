package corporate

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of a corporate lead.
type Status string

const (
	StatusNew          Status = "New"
	StatusDiscovery    Status = "Discovery"
	StatusProposalSent Status = "Proposal Sent"
	StatusNegotiation  Status = "Negotiation"
	StatusClosedWon    Status = "Closed Won"
	StatusClosedLost   Status = "Closed Lost"
)

// ParseStatus validates a status string against the closed set.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusNew, StatusDiscovery, StatusProposalSent, StatusNegotiation,
		StatusClosedWon, StatusClosedLost:
		return Status(s), true
	}
	return "", false
}

// IsClosing reports whether s is a terminal state.
func (s Status) IsClosing() bool {
	return s == StatusClosedWon || s == StatusClosedLost
}

// ReminderType distinguishes the recurring check-in cadence from one-shot
// post-closure follow-ups.
type ReminderType string

const (
	ReminderLeadCheckin ReminderType = "lead_checkin"
	ReminderFollowUp    ReminderType = "follow_up"
)

// Lead is a corporate prospect owned by exactly one corporate manager for
// its whole life.
type Lead struct {
	CorporateLeadID int64            `json:"corporate_lead_id"`
	Name            string           `json:"name"`
	ContactNumber   string           `json:"contact_number"`
	Email           *string          `json:"email"`
	Status          Status           `json:"status"`
	ManagerID       int64            `json:"manager_id"`
	EnquiryDate     time.Time        `json:"enquiry_date"`
	ClosedDate      *time.Time       `json:"closed_date,omitempty"`
	LastQuotedValue *decimal.Decimal `json:"last_quoted_value"`
	LastQuotedAt    *time.Time       `json:"last_quoted_at"`
	Items           []*Item          `json:"items,omitempty"`
}

// Item is one bill-of-material line on a corporate lead.
type Item struct {
	ItemID          int64     `json:"item_id"`
	CorporateLeadID int64     `json:"corporate_lead_id,omitempty"`
	BillOfMaterial  string    `json:"bill_of_material"`
	Quantity        int       `json:"quantity"`
	Requirements    *string   `json:"requirements"`
	LastUpdated     time.Time `json:"last_updated"`
}

// Quote is one quotation issued against a lead. Inserting a quote refreshes
// the lead's last_quoted_value/last_quoted_at cache in the same transaction.
type Quote struct {
	QuoteID         int64           `json:"quote_id"`
	CorporateLeadID int64           `json:"corporate_lead_id"`
	Amount          decimal.Decimal `json:"amount"`
	Notes           *string         `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Document is an uploaded proposal attached to a lead.
type Document struct {
	DocID           int64     `json:"doc_id"`
	CorporateLeadID int64     `json:"corporate_lead_id"`
	DocType         string    `json:"doc_type"`
	FileName        string    `json:"file_name"`
	StoredPath      string    `json:"stored_path"`
	MimeType        string    `json:"mime_type"`
	FileSize        int64     `json:"file_size"`
	UploadedBy      *int64    `json:"uploaded_by,omitempty"`
	UploadedAt      time.Time `json:"uploaded_at"`
	FileURL         string    `json:"file_url,omitempty"`
}

// Reminder is a scheduled follow-up obligation on a lead.
type Reminder struct {
	ReminderID      int64        `json:"reminder_id"`
	CorporateLeadID int64        `json:"corporate_lead_id"`
	RemindAt        time.Time    `json:"remind_at"`
	ReminderType    ReminderType `json:"reminder_type"`
	Notes           *string      `json:"notes"`
	Done            bool         `json:"done"`
	LeadName        string       `json:"name,omitempty"`
	LeadStatus      Status       `json:"status,omitempty"`
}

// HistoryEntry is one append-only record of a status-affecting mutation.
type HistoryEntry struct {
	StatusID        int64     `json:"status_id"`
	CorporateLeadID int64     `json:"corporate_lead_id"`
	Status          Status    `json:"status"`
	Notes           *string   `json:"notes"`
	UpdatedBy       int64     `json:"updated_by"`
	UpdatedByName   *string   `json:"updated_by_name,omitempty"`
	UpdateTimestamp time.Time `json:"update_timestamp"`
}

// CreateLeadRequest is the payload for creating a corporate lead.
type CreateLeadRequest struct {
	Name          string  `json:"name"`
	ContactNumber string  `json:"contact_number"`
	Email         *string `json:"email"`
	EnquiryDate   *string `json:"enquiry_date"` // YYYY-MM-DD, defaults to today
}

// UpdateLeadRequest patches lead fields; only supplied fields are written.
type UpdateLeadRequest struct {
	CorporateLeadID int64   `json:"corporate_lead_id"`
	Name            *string `json:"name"`
	ContactNumber   *string `json:"contact_number"`
	Email           *string `json:"email"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

// AddItemRequest is the payload for a new bill-of-material line.
type AddItemRequest struct {
	CorporateLeadID int64   `json:"corporate_lead_id"`
	BillOfMaterial  string  `json:"bill_of_material"`
	Quantity        int     `json:"quantity"`
	Requirements    *string `json:"requirements"`
}

// UpdateItemRequest patches one bill-of-material line.
type UpdateItemRequest struct {
	ItemID         int64   `json:"item_id"`
	BillOfMaterial *string `json:"bill_of_material"`
	Quantity       *int    `json:"quantity"`
	Requirements   *string `json:"requirements"`
}

// CloseRequest settles a lead into a terminal status.
type CloseRequest struct {
	CorporateLeadID int64            `json:"corporate_lead_id"`
	Status          string           `json:"status"`
	Notes           *string          `json:"notes"`
	ValueClosed     *decimal.Decimal `json:"value_closed"`
}

// AddQuoteRequest is the payload for a new quotation.
type AddQuoteRequest struct {
	CorporateLeadID int64            `json:"corporate_lead_id"`
	Amount          *decimal.Decimal `json:"amount"`
	Notes           *string          `json:"notes"`
}

// ListFilter narrows the lead list; manager scoping is added by the service.
type ListFilter struct {
	Query  string
	Status *Status
	Limit  int
	Offset int
}

// LeadPage is one page of leads with the unpaged total.
type LeadPage struct {
	Data   []*Lead `json:"data"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// LeadPatch is the set of fields an update actually writes.
type LeadPatch struct {
	Name          *string
	ContactNumber *string
	Email         *string
	Status        *Status
}

// ItemPatch is the set of item fields an update actually writes.
type ItemPatch struct {
	BillOfMaterial *string
	Quantity       *int
	Requirements   *string
}
