package corporate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nexatech/crm-backend/internal/apperror"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

const (
	// MaxProposalBytes caps proposal uploads at 20 MB.
	MaxProposalBytes = 20 << 20

	defaultReminderWindowDays = 14
	maxReminderWindowDays     = 60

	maxListLimit = 100
)

// Service defines the corporate lead engine. Every operation is scoped to
// the calling manager; leads created by other managers are invisible.
type Service interface {
	// Create persists a new lead with its initial history entry and first
	// check-in reminder.
	Create(ctx context.Context, p identity.Principal, req CreateLeadRequest) (*Lead, error)

	// List returns one page of the caller's leads.
	List(ctx context.Context, p identity.Principal, filter ListFilter) (*LeadPage, error)

	// GetOne returns one owned lead with its bill-of-material lines.
	GetOne(ctx context.Context, p identity.Principal, leadID int64) (*Lead, error)

	// Update patches lead fields; a status change appends a history entry.
	Update(ctx context.Context, p identity.Principal, req UpdateLeadRequest) (*Lead, error)

	// AddItem appends a bill-of-material line to an owned lead.
	AddItem(ctx context.Context, p identity.Principal, req AddItemRequest) (*Item, error)

	// UpdateItem patches a bill-of-material line on an owned lead.
	UpdateItem(ctx context.Context, p identity.Principal, req UpdateItemRequest) (*Item, error)

	// Close settles the lead into a terminal status and schedules the
	// one-week follow-up reminder.
	Close(ctx context.Context, p identity.Principal, req CloseRequest) error

	// AddQuote records a quotation and refreshes the lead's quote cache.
	AddQuote(ctx context.Context, p identity.Principal, req AddQuoteRequest) (*Quote, error)

	// ListQuotes returns an owned lead's quotes, newest first.
	ListQuotes(ctx context.Context, p identity.Principal, leadID int64) ([]*Quote, error)

	// ListHistory returns an owned lead's status history, newest first.
	ListHistory(ctx context.Context, p identity.Principal, leadID int64) ([]*HistoryEntry, error)

	// ListReminders returns open reminders on the caller's leads due within
	// windowDays (clamped to [1,60], default 14).
	ListReminders(ctx context.Context, p identity.Principal, windowDays int, dueOnly bool) ([]*Reminder, error)

	// AckReminder marks a reminder done. Acknowledging a check-in on an
	// open lead schedules the next one; acknowledging twice is a no-op.
	AckReminder(ctx context.Context, p identity.Principal, reminderID int64) (*AckOutcome, error)

	// UploadProposal stores a PDF proposal and records it against the lead.
	UploadProposal(ctx context.Context, p identity.Principal, leadID int64, fileName, mimeType string, size int64, r io.Reader) (*Document, error)

	// ListProposals returns an owned lead's proposals, newest first.
	ListProposals(ctx context.Context, p identity.Principal, leadID int64) ([]*Document, error)
}

type service struct {
	repo  Repository
	blobs BlobStore
}

// NewService creates a new corporate lead service.
func NewService(repo Repository, blobs BlobStore) Service {
	return &service{repo: repo, blobs: blobs}
}

func (s *service) Create(ctx context.Context, p identity.Principal, req CreateLeadRequest) (*Lead, error) {
	if req.Name == "" || req.ContactNumber == "" {
		return nil, apperror.Validationf("name and contact_number are required")
	}

	lead := &Lead{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		ManagerID:     p.EmployeeID,
	}
	if req.EnquiryDate != nil && *req.EnquiryDate != "" {
		d, err := time.Parse("2006-01-02", *req.EnquiryDate)
		if err != nil {
			return nil, apperror.Validationf("invalid enquiry_date: %s", *req.EnquiryDate)
		}
		lead.EnquiryDate = d
	}

	if err := s.repo.CreateLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("create corporate lead: %w", err)
	}
	return lead, nil
}

func (s *service) List(ctx context.Context, p identity.Principal, filter ListFilter) (*LeadPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	leads, total, err := s.repo.List(ctx, p.EmployeeID, filter)
	if err != nil {
		return nil, fmt.Errorf("list corporate leads: %w", err)
	}
	if leads == nil {
		leads = []*Lead{}
	}
	return &LeadPage{Data: leads, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *service) GetOne(ctx context.Context, p identity.Principal, leadID int64) (*Lead, error) {
	lead, err := s.getOwned(ctx, p, leadID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Item{}
	}
	lead.Items = items
	return lead, nil
}

func (s *service) Update(ctx context.Context, p identity.Principal, req UpdateLeadRequest) (*Lead, error) {
	if req.CorporateLeadID == 0 {
		return nil, apperror.Validationf("corporate_lead_id is required")
	}

	patch := LeadPatch{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
	}
	if req.Status != nil {
		status, ok := ParseStatus(*req.Status)
		if !ok {
			return nil, apperror.Validationf("invalid status: %s", *req.Status)
		}
		if status.IsClosing() {
			// Only Close stamps closed_date and schedules the follow-up.
			return nil, apperror.Validationf("closing statuses must go through the close operation")
		}
		patch.Status = &status
	}
	if patch.Name == nil && patch.ContactNumber == nil && patch.Email == nil && patch.Status == nil {
		return nil, apperror.Validationf("no fields to update")
	}
	if patch.Name != nil && *patch.Name == "" {
		return nil, apperror.Validationf("name cannot be empty")
	}
	if patch.ContactNumber != nil && *patch.ContactNumber == "" {
		return nil, apperror.Validationf("contact_number cannot be empty")
	}

	lead, err := s.repo.UpdateLead(ctx, p.EmployeeID, req.CorporateLeadID, patch, req.Notes, p.EmployeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("Lead not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update corporate lead: %w", err)
	}
	return lead, nil
}

func (s *service) AddItem(ctx context.Context, p identity.Principal, req AddItemRequest) (*Item, error) {
	if req.CorporateLeadID == 0 || req.BillOfMaterial == "" {
		return nil, apperror.Validationf("corporate_lead_id and bill_of_material are required")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, apperror.Validationf("quantity must be >= 1")
	}
	if _, err := s.getOwned(ctx, p, req.CorporateLeadID); err != nil {
		return nil, err
	}

	item := &Item{
		CorporateLeadID: req.CorporateLeadID,
		BillOfMaterial:  req.BillOfMaterial,
		Quantity:        quantity,
		Requirements:    req.Requirements,
	}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, p identity.Principal, req UpdateItemRequest) (*Item, error) {
	if req.ItemID == 0 {
		return nil, apperror.Validationf("item_id is required")
	}
	patch := ItemPatch{
		BillOfMaterial: req.BillOfMaterial,
		Quantity:       req.Quantity,
		Requirements:   req.Requirements,
	}
	if patch.BillOfMaterial == nil && patch.Quantity == nil && patch.Requirements == nil {
		return nil, apperror.Validationf("no fields to update")
	}
	if patch.BillOfMaterial != nil && *patch.BillOfMaterial == "" {
		return nil, apperror.Validationf("bill_of_material cannot be empty")
	}
	if patch.Quantity != nil && *patch.Quantity < 1 {
		return nil, apperror.Validationf("quantity must be >= 1")
	}

	item, err := s.repo.UpdateItem(ctx, p.EmployeeID, req.ItemID, patch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("Item not found")
	}
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

func (s *service) Close(ctx context.Context, p identity.Principal, req CloseRequest) error {
	if req.CorporateLeadID == 0 || req.Status == "" {
		return apperror.Validationf("corporate_lead_id and status are required")
	}
	status, ok := ParseStatus(req.Status)
	if !ok || !status.IsClosing() {
		return apperror.Validationf("status must be Closed Won or Closed Lost")
	}
	if _, err := s.getOwned(ctx, p, req.CorporateLeadID); err != nil {
		return err
	}

	note := closingNote(req.Notes, req.ValueClosed)
	err := s.repo.CloseLead(ctx, p.EmployeeID, req.CorporateLeadID, status, note, p.EmployeeID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.NotFoundf("Lead not found")
	}
	if err != nil {
		return fmt.Errorf("close corporate lead: %w", err)
	}
	return nil
}

func (s *service) AddQuote(ctx context.Context, p identity.Principal, req AddQuoteRequest) (*Quote, error) {
	if req.CorporateLeadID == 0 {
		return nil, apperror.Validationf("corporate_lead_id is required")
	}
	if req.Amount == nil || req.Amount.IsNegative() || req.Amount.IsZero() {
		return nil, apperror.Validationf("amount must be a positive number")
	}
	if _, err := s.getOwned(ctx, p, req.CorporateLeadID); err != nil {
		return nil, err
	}

	quote := &Quote{
		CorporateLeadID: req.CorporateLeadID,
		Amount:          *req.Amount,
		Notes:           req.Notes,
	}
	if err := s.repo.AddQuote(ctx, quote); err != nil {
		return nil, fmt.Errorf("add quote: %w", err)
	}
	return quote, nil
}

func (s *service) ListQuotes(ctx context.Context, p identity.Principal, leadID int64) ([]*Quote, error) {
	if _, err := s.getOwned(ctx, p, leadID); err != nil {
		return nil, err
	}
	quotes, err := s.repo.ListQuotes(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	if quotes == nil {
		quotes = []*Quote{}
	}
	return quotes, nil
}

func (s *service) ListHistory(ctx context.Context, p identity.Principal, leadID int64) ([]*HistoryEntry, error) {
	history, err := s.repo.ListHistory(ctx, p.EmployeeID, leadID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if history == nil {
		history = []*HistoryEntry{}
	}
	return history, nil
}

func (s *service) ListReminders(ctx context.Context, p identity.Principal, windowDays int, dueOnly bool) ([]*Reminder, error) {
	if windowDays <= 0 {
		windowDays = defaultReminderWindowDays
	}
	if windowDays > maxReminderWindowDays {
		windowDays = maxReminderWindowDays
	}
	reminders, err := s.repo.ListReminders(ctx, p.EmployeeID, time.Duration(windowDays)*24*time.Hour, dueOnly)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	if reminders == nil {
		reminders = []*Reminder{}
	}
	return reminders, nil
}

func (s *service) AckReminder(ctx context.Context, p identity.Principal, reminderID int64) (*AckOutcome, error) {
	if reminderID == 0 {
		return nil, apperror.Validationf("reminder_id is required")
	}
	outcome, err := s.repo.AckReminder(ctx, p.EmployeeID, reminderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("Reminder not found")
	}
	if err != nil {
		return nil, fmt.Errorf("ack reminder: %w", err)
	}
	return &outcome, nil
}

func (s *service) UploadProposal(ctx context.Context, p identity.Principal, leadID int64, fileName, mimeType string, size int64, r io.Reader) (*Document, error) {
	if leadID == 0 {
		return nil, apperror.Validationf("corporate_lead_id is required")
	}
	if mimeType != "application/pdf" {
		return nil, apperror.Validationf("only PDF proposals are accepted")
	}
	if size <= 0 || size > MaxProposalBytes {
		return nil, apperror.Validationf("proposal must be between 1 byte and 20 MB")
	}
	if _, err := s.getOwned(ctx, p, leadID); err != nil {
		return nil, err
	}

	storedPath, err := s.blobs.Put(ctx, ObjectKey(leadID, fileName), io.LimitReader(r, MaxProposalBytes))
	if err != nil {
		return nil, fmt.Errorf("store proposal: %w", err)
	}

	uploader := p.EmployeeID
	doc := &Document{
		CorporateLeadID: leadID,
		FileName:        fileName,
		StoredPath:      storedPath,
		MimeType:        mimeType,
		FileSize:        size,
		UploadedBy:      &uploader,
	}
	if err := s.repo.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("record proposal: %w", err)
	}
	doc.FileURL = s.blobs.URL(storedPath)
	return doc, nil
}

func (s *service) ListProposals(ctx context.Context, p identity.Principal, leadID int64) ([]*Document, error) {
	docs, err := s.repo.ListDocuments(ctx, p.EmployeeID, leadID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	for _, doc := range docs {
		doc.FileURL = s.blobs.URL(doc.StoredPath)
	}
	if docs == nil {
		docs = []*Document{}
	}
	return docs, nil
}

func (s *service) getOwned(ctx context.Context, p identity.Principal, leadID int64) (*Lead, error) {
	lead, err := s.repo.GetLead(ctx, p.EmployeeID, leadID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("Lead not found")
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// closingNote composes the history note for a closure, folding the deal
// value into the text whenever one was supplied.
func closingNote(notes *string, value *decimal.Decimal) *string {
	base := ""
	if notes != nil {
		base = *notes
	}
	if value != nil {
		if base != "" {
			base += " "
		}
		base += fmt.Sprintf("(Deal value ₹%s)", value.String())
	}
	if base == "" {
		return nil
	}
	return &base
}
