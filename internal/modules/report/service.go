package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nexatech/crm-backend/internal/apperror"
	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Service exposes the analytics and export operations.
type Service interface {
	// RetailStatusMix counts leads per status. Scope "me" covers the
	// caller's assigned leads; "domain" covers a manager's whole domain.
	RetailStatusMix(ctx context.Context, p identity.Principal, scope string) ([]*StatusCount, error)

	// TeamWorkload summarises a manager's assignees.
	TeamWorkload(ctx context.Context, p identity.Principal) ([]*WorkloadRow, error)

	// SalesPerformance summarises the caller's closed deals for the
	// current month or quarter.
	SalesPerformance(ctx context.Context, p identity.Principal, period string) (*Performance, error)

	// CorporateSummary snapshots the caller's corporate pipeline.
	CorporateSummary(ctx context.Context, p identity.Principal) (*CorporateSummary, error)

	// ExportLeads writes the caller's domain leads as an xlsx workbook.
	ExportLeads(ctx context.Context, p identity.Principal, w io.Writer) error
}

type service struct {
	repo Repository
}

// NewService creates a new report service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RetailStatusMix(ctx context.Context, p identity.Principal, scope string) ([]*StatusCount, error) {
	if scope == "" {
		scope = "me"
	}
	var sc Scope
	switch scope {
	case "me":
		self := p.EmployeeID
		sc.AssignedTo = &self
	case "domain":
		domain, ok := identity.ManagerDomain(p.Role)
		if !ok {
			return nil, apperror.Forbiddenf("Forbidden")
		}
		sc.Domain = &domain
	default:
		return nil, apperror.Validationf("scope must be me or domain")
	}

	mix, err := s.repo.RetailStatusMix(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("status mix: %w", err)
	}
	if mix == nil {
		mix = []*StatusCount{}
	}
	return mix, nil
}

func (s *service) TeamWorkload(ctx context.Context, p identity.Principal) ([]*WorkloadRow, error) {
	domain, ok := identity.ManagerDomain(p.Role)
	if !ok {
		return nil, apperror.Forbiddenf("Forbidden")
	}
	workload, err := s.repo.TeamWorkload(ctx, p.EmployeeID, domain)
	if err != nil {
		return nil, fmt.Errorf("team workload: %w", err)
	}
	if workload == nil {
		workload = []*WorkloadRow{}
	}
	return workload, nil
}

func (s *service) SalesPerformance(ctx context.Context, p identity.Principal, period string) (*Performance, error) {
	frame := "month"
	switch period {
	case "", "month":
	case "quarter":
		frame = "quarter"
	default:
		return nil, apperror.Validationf("period must be month or quarter")
	}
	perf, err := s.repo.SalesPerformance(ctx, p.EmployeeID, frame)
	if err != nil {
		return nil, fmt.Errorf("sales performance: %w", err)
	}
	return perf, nil
}

func (s *service) CorporateSummary(ctx context.Context, p identity.Principal) (*CorporateSummary, error) {
	if p.Role != identity.RoleCorporateManager {
		return nil, apperror.Forbiddenf("Forbidden")
	}
	summary, err := s.repo.CorporateSummary(ctx, p.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("corporate summary: %w", err)
	}
	return summary, nil
}

var exportHeaders = []string{
	"LEAD ID", "NAME", "CONTACT NUMBER", "STATUS", "ENQUIRY DATE",
	"ASSIGNED TO", "ASSIGNED BY", "VALUE CLOSED", "CLOSED DATE",
}

func (s *service) ExportLeads(ctx context.Context, p identity.Principal, w io.Writer) error {
	domain, ok := identity.ManagerDomain(p.Role)
	if !ok {
		return apperror.Forbiddenf("Forbidden")
	}
	rows, err := s.repo.ExportLeads(ctx, domain)
	if err != nil {
		return fmt.Errorf("export leads: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Leads"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		f.SetCellStyle(sheet, "A1", last, bold)
	}

	for i, row := range rows {
		values := []interface{}{
			row.LeadID,
			row.Name,
			row.Contact,
			row.Status,
			row.EnquiryDate.Format("2006-01-02"),
			deref(row.AssignedTo),
			deref(row.AssignedBy),
			"",
			"",
		}
		if row.ValueClosed != nil {
			values[7] = row.ValueClosed.String()
		}
		if row.ClosedDate != nil {
			values[8] = row.ClosedDate.Format("2006-01-02")
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
