package retail

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nexatech/crm-backend/internal/apperror"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Service defines the retail lead engine.
type Service interface {
	// Create validates and persists a new lead with its items and the
	// initial history entry, returning the new lead id.
	Create(ctx context.Context, p identity.Principal, req CreateLeadRequest) (int64, error)

	// Assign sets the lead's assignee, recording a transfer when a distinct
	// prior assignee existed.
	Assign(ctx context.Context, p identity.Principal, req AssignRequest) (*AssignResult, error)

	// UpdateStatus moves the lead through its lifecycle, stamping closure
	// fields for terminal statuses.
	UpdateStatus(ctx context.Context, p identity.Principal, req UpdateStatusRequest) error

	// List returns one page of leads visible to the principal.
	List(ctx context.Context, p identity.Principal, filter ListFilter) (*LeadPage, error)

	// GetOne returns a lead with items and history if the principal may see it.
	GetOne(ctx context.Context, p identity.Principal, leadID int64) (*LeadDetail, error)

	// ListTransfers returns a lead's transfer records, newest first.
	ListTransfers(ctx context.Context, p identity.Principal, leadID int64) ([]*Transfer, error)
}

type service struct {
	repo Repository
}

// NewService creates a new retail lead service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, p identity.Principal, req CreateLeadRequest) (int64, error) {
	switch p.Role {
	case identity.RoleSales, identity.RoleLaptopManager, identity.RolePCManager:
	default:
		return 0, apperror.Forbiddenf("role %s cannot create retail leads", p.Role)
	}
	if req.Name == "" || req.ContactNumber == "" {
		return 0, apperror.Validationf("name and contact_number are required")
	}
	if len(req.Items) == 0 {
		return 0, apperror.Validationf("at least one item is required")
	}

	mgrDomain, isManager := identity.ManagerDomain(p.Role)

	items := make([]*LeadItem, 0, len(req.Items))
	for _, it := range req.Items {
		category, ok := identity.ParseCategory(it.Category)
		if !ok {
			return 0, apperror.Validationf("invalid category: %s", it.Category)
		}
		if it.Brand == "" {
			return 0, apperror.Validationf("brand is required for each item")
		}
		quantity := it.Quantity
		if quantity == 0 {
			quantity = 1
		}
		if quantity < 1 {
			return 0, apperror.Validationf("quantity must be >= 1")
		}
		if isManager && category != mgrDomain {
			return 0, apperror.Validationf("managers can only create %s leads", mgrDomain)
		}
		items = append(items, &LeadItem{
			ItemDescription: it.ItemDescription,
			Category:        category,
			Brand:           it.Brand,
			Quantity:        quantity,
		})
	}

	lead := &Lead{
		StoreID:       req.StoreID,
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Source:        req.Source,
		SourceDetail:  req.SourceDetail,
		CreatedBy:     p.EmployeeID,
	}
	if err := s.repo.CreateLead(ctx, lead, items); err != nil {
		return 0, fmt.Errorf("create lead: %w", err)
	}
	return lead.LeadID, nil
}

func (s *service) Assign(ctx context.Context, p identity.Principal, req AssignRequest) (*AssignResult, error) {
	domain, ok := identity.ManagerDomain(p.Role)
	if !ok {
		return nil, apperror.Forbiddenf("only domain managers can assign leads")
	}
	if req.LeadID == 0 || req.AssignedTo == 0 {
		return nil, apperror.Validationf("lead_id and assigned_to are required")
	}

	if _, err := s.getExisting(ctx, req.LeadID); err != nil {
		return nil, err
	}
	if err := s.requireDomain(ctx, req.LeadID, domain); err != nil {
		return nil, err
	}

	transferred, err := s.repo.AssignLead(ctx, req.LeadID, req.AssignedTo, p.EmployeeID, req.TransferReason)
	if err != nil {
		return nil, fmt.Errorf("assign lead: %w", err)
	}
	return &AssignResult{OK: true, Transferred: transferred}, nil
}

func (s *service) UpdateStatus(ctx context.Context, p identity.Principal, req UpdateStatusRequest) error {
	if req.LeadID == 0 || req.Status == "" {
		return apperror.Validationf("lead_id and status are required")
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		return apperror.Validationf("invalid status: %s", req.Status)
	}

	lead, err := s.getExisting(ctx, req.LeadID)
	if err != nil {
		return err
	}

	if p.Role == identity.RoleSales {
		if lead.AssignedTo == nil || *lead.AssignedTo != p.EmployeeID {
			return apperror.Forbiddenf("Forbidden")
		}
	}
	if domain, isManager := identity.ManagerDomain(p.Role); isManager {
		if err := s.requireDomain(ctx, req.LeadID, domain); err != nil {
			return err
		}
	}

	valueClosed := req.ValueClosed
	if status != StatusClosedWon {
		// Only a won deal carries a closing value.
		valueClosed = nil
	}
	if err := s.repo.UpdateStatus(ctx, req.LeadID, status, valueClosed, req.Notes, p.EmployeeID); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

func (s *service) List(ctx context.Context, p identity.Principal, filter ListFilter) (*LeadPage, error) {
	// Visibility policy is compiled into the filter: sales see their own
	// leads, domain managers see only their domain regardless of overrides.
	if p.Role == identity.RoleSales {
		self := p.EmployeeID
		filter.SalesSelf = &self
	}
	if domain, isManager := identity.ManagerDomain(p.Role); isManager {
		filter.Domain = &domain
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	leads, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if leads == nil {
		leads = []*Lead{}
	}
	return &LeadPage{Total: total, Data: leads}, nil
}

func (s *service) GetOne(ctx context.Context, p identity.Principal, leadID int64) (*LeadDetail, error) {
	lead, err := s.getExisting(ctx, leadID)
	if err != nil {
		return nil, err
	}

	allowed := false
	switch {
	case p.Role == identity.RoleSales:
		allowed = (lead.AssignedTo != nil && *lead.AssignedTo == p.EmployeeID) ||
			lead.CreatedBy == p.EmployeeID
	case p.IsManager():
		domain, _ := identity.ManagerDomain(p.Role)
		outside, err := s.repo.HasItemsOutside(ctx, leadID, domain)
		if err != nil {
			return nil, err
		}
		allowed = !outside
	}
	if !allowed {
		return nil, apperror.Forbiddenf("Forbidden")
	}

	items, err := s.repo.ListItems(ctx, leadID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListHistory(ctx, leadID)
	if err != nil {
		return nil, err
	}
	return &LeadDetail{Lead: lead, Items: items, History: history}, nil
}

func (s *service) ListTransfers(ctx context.Context, p identity.Principal, leadID int64) ([]*Transfer, error) {
	switch p.Role {
	case identity.RoleSales, identity.RoleLaptopManager, identity.RolePCManager:
	default:
		return nil, apperror.Forbiddenf("Forbidden")
	}
	return s.repo.ListTransfers(ctx, leadID)
}

func (s *service) getExisting(ctx context.Context, leadID int64) (*Lead, error) {
	lead, err := s.repo.GetLead(ctx, leadID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("Lead not found")
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *service) requireDomain(ctx context.Context, leadID int64, domain identity.Category) error {
	outside, err := s.repo.HasItemsOutside(ctx, leadID, domain)
	if err != nil {
		return err
	}
	if outside {
		return apperror.Forbiddenf("Lead has items outside your domain")
	}
	return nil
}
