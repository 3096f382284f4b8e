package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusCount is one slice of the status mix.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// WorkloadRow summarises one salesperson's load under a manager.
type WorkloadRow struct {
	EmployeeID    *int64          `json:"employee_id"`
	Name          string          `json:"name"`
	AssignedCount int             `json:"assigned_count"`
	OpenCount     int             `json:"open_count"`
	WonCount      int             `json:"won_count"`
	WonValue      decimal.Decimal `json:"won_value"`
}

// Performance is a salesperson's closed-deal summary for the current month
// or quarter.
type Performance struct {
	Period        string          `json:"period"`
	WonCount      int             `json:"won_count"`
	WonValue      decimal.Decimal `json:"won_value"`
	LostCount     int             `json:"lost_count"`
	ActivityCount int             `json:"activity_count"`
}

// CorporateSummary is a corporate manager's pipeline snapshot.
type CorporateSummary struct {
	Period        string `json:"period"`
	WonCount      int    `json:"won_count"`
	OpenCount     int    `json:"open_count"`
	PipelineCount int    `json:"pipeline_count"`
}

// ExportRow is one flattened lead row for the spreadsheet export.
type ExportRow struct {
	LeadID       int64
	Name         string
	Contact      string
	Status       string
	EnquiryDate  time.Time
	AssignedTo   *string
	AssignedBy   *string
	ValueClosed  *decimal.Decimal
	ClosedDate   *time.Time
}
