package report

import (
	"context"

	"github.com/nexatech/crm-backend/internal/modules/identity"
)

// Scope narrows a retail status mix to one assignee or to leads contained
// in one domain. Zero value means everything.
type Scope struct {
	AssignedTo *int64
	Domain     *identity.Category
}

// Repository defines the read-only analytics queries.
type Repository interface {
	// RetailStatusMix counts retail leads per status within the scope.
	RetailStatusMix(ctx context.Context, scope Scope) ([]*StatusCount, error)

	// TeamWorkload summarises the leads a manager has assigned inside their
	// domain, grouped by assignee.
	TeamWorkload(ctx context.Context, managerID int64, domain identity.Category) ([]*WorkloadRow, error)

	// SalesPerformance summarises an employee's closed deals and activity
	// since the start of the current frame ("month" or "quarter").
	SalesPerformance(ctx context.Context, employeeID int64, frame string) (*Performance, error)

	// CorporateSummary snapshots a corporate manager's pipeline for the
	// current quarter.
	CorporateSummary(ctx context.Context, managerID int64) (*CorporateSummary, error)

	// ExportLeads returns every retail lead contained in the domain,
	// flattened for the spreadsheet export.
	ExportLeads(ctx context.Context, domain identity.Category) ([]*ExportRow, error)
}
