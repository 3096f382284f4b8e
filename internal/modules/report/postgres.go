package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nexatech/crm-backend/internal/modules/identity"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) RetailStatusMix(ctx context.Context, scope Scope) ([]*StatusCount, error) {
	where := ""
	var args []interface{}
	p := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if scope.AssignedTo != nil {
		where = ` WHERE assigned_to = ` + p(*scope.AssignedTo)
	} else if scope.Domain != nil {
		where = ` WHERE NOT EXISTS (
			SELECT 1 FROM lead_items li WHERE li.lead_id = leads.lead_id AND li.category <> ` + p(*scope.Domain) + `)`
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*)::int FROM leads`+where+` GROUP BY status ORDER BY status`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var mix []*StatusCount
	for rows.Next() {
		c := &StatusCount{}
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		mix = append(mix, c)
	}
	return mix, rows.Err()
}

func (r *postgresRepo) TeamWorkload(ctx context.Context, managerID int64, domain identity.Category) ([]*WorkloadRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			e.employee_id,
			COALESCE(e.name, e.email) AS name,
			COUNT(*)::int AS assigned_count,
			SUM((l.status NOT IN ('Closed Won','Closed Lost'))::int)::int AS open_count,
			SUM((l.status = 'Closed Won')::int)::int AS won_count,
			COALESCE(SUM(CASE WHEN l.status = 'Closed Won' THEN l.value_closed ELSE 0 END), 0) AS won_value
		FROM leads l
		LEFT JOIN employees e ON e.employee_id = l.assigned_to
		WHERE l.assigned_by = $1
		  AND l.assigned_to IS NOT NULL
		  AND NOT EXISTS (
			SELECT 1 FROM lead_items li WHERE li.lead_id = l.lead_id AND li.category <> $2
		  )
		GROUP BY e.employee_id, COALESCE(e.name, e.email)
		ORDER BY name NULLS LAST`, managerID, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var workload []*WorkloadRow
	for rows.Next() {
		w := &WorkloadRow{}
		if err := rows.Scan(&w.EmployeeID, &w.Name, &w.AssignedCount, &w.OpenCount,
			&w.WonCount, &w.WonValue); err != nil {
			return nil, err
		}
		workload = append(workload, w)
	}
	return workload, rows.Err()
}

func (r *postgresRepo) SalesPerformance(ctx context.Context, employeeID int64, frame string) (*Performance, error) {
	// frame is validated by the service to "month" or "quarter" before it
	// is interpolated here.
	perf := &Performance{Period: frame}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)::int, COALESCE(SUM(value_closed), 0)
		FROM leads
		WHERE status = 'Closed Won' AND assigned_to = $1
		  AND closed_date >= date_trunc('`+frame+`', CURRENT_DATE)`, employeeID).
		Scan(&perf.WonCount, &perf.WonValue)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)::int
		FROM leads
		WHERE status = 'Closed Lost' AND assigned_to = $1
		  AND closed_date >= date_trunc('`+frame+`', CURRENT_DATE)`, employeeID).
		Scan(&perf.LostCount)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)::int
		FROM lead_status_history
		WHERE updated_by = $1
		  AND update_timestamp >= date_trunc('`+frame+`', CURRENT_DATE)`, employeeID).
		Scan(&perf.ActivityCount)
	if err != nil {
		return nil, err
	}

	return perf, nil
}

func (r *postgresRepo) CorporateSummary(ctx context.Context, managerID int64) (*CorporateSummary, error) {
	summary := &CorporateSummary{Period: "quarter"}

	err := r.db.QueryRowContext(ctx, `
		SELECT
			SUM((status = 'Closed Won' AND closed_date >= date_trunc('quarter', CURRENT_DATE))::int)::int,
			SUM((status NOT IN ('Closed Won','Closed Lost'))::int)::int,
			SUM((status IN ('Proposal Sent','Negotiation'))::int)::int
		FROM corporate_leads
		WHERE manager_id = $1`, managerID).
		Scan(&scanOrZero{&summary.WonCount}, &scanOrZero{&summary.OpenCount}, &scanOrZero{&summary.PipelineCount})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *postgresRepo) ExportLeads(ctx context.Context, domain identity.Category) ([]*ExportRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.lead_id, l.name, l.contact_number, l.status, l.enquiry_date,
		       ea.name AS assigned_to, eb.name AS assigned_by,
		       l.value_closed, l.closed_date
		FROM leads l
		LEFT JOIN employees ea ON ea.employee_id = l.assigned_to
		LEFT JOIN employees eb ON eb.employee_id = l.assigned_by
		WHERE NOT EXISTS (
			SELECT 1 FROM lead_items li WHERE li.lead_id = l.lead_id AND li.category <> $1
		)
		ORDER BY l.enquiry_date DESC, l.lead_id DESC`, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var export []*ExportRow
	for rows.Next() {
		row := &ExportRow{}
		if err := rows.Scan(&row.LeadID, &row.Name, &row.Contact, &row.Status,
			&row.EnquiryDate, &row.AssignedTo, &row.AssignedBy,
			&row.ValueClosed, &row.ClosedDate); err != nil {
			return nil, err
		}
		export = append(export, row)
	}
	return export, rows.Err()
}

// scanOrZero treats the NULL a SUM yields on an empty table as zero.
type scanOrZero struct{ dst *int }

func (s *scanOrZero) Scan(src interface{}) error {
	if src == nil {
		*s.dst = 0
		return nil
	}
	switch v := src.(type) {
	case int64:
		*s.dst = int(v)
	default:
		return fmt.Errorf("unexpected count type %T", src)
	}
	return nil
}
