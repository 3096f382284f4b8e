package retail

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nexatech/crm-backend/internal/modules/identity"
	"github.com/shopspring/decimal"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const leadColumns = `lead_id, store_id, name, contact_number, email, source, source_detail,
	enquiry_date, created_by, assigned_to, assigned_by, status, value_closed, closed_date`

// CreateLead inserts the lead, its items, and the initial history row inside
// a single transaction.
func (r *postgresRepo) CreateLead(ctx context.Context, lead *Lead, items []*LeadItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO leads
		  (store_id, name, contact_number, email, source, source_detail, created_by, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'New')
		RETURNING lead_id, enquiry_date`,
		lead.StoreID, lead.Name, lead.ContactNumber, lead.Email,
		lead.Source, lead.SourceDetail, lead.CreatedBy).
		Scan(&lead.LeadID, &lead.EnquiryDate)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	lead.Status = StatusNew

	for _, item := range items {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO lead_items (lead_id, item_description, category, brand, quantity)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING lead_item_id`,
			lead.LeadID, item.ItemDescription, item.Category, item.Brand, item.Quantity).
			Scan(&item.LeadItemID)
		if err != nil {
			return fmt.Errorf("insert lead_item: %w", err)
		}
		item.LeadID = lead.LeadID
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lead_status_history (lead_id, status, updated_by, notes)
		VALUES ($1,'New',$2,'Lead created')`,
		lead.LeadID, lead.CreatedBy)
	if err != nil {
		return fmt.Errorf("insert lead_status_history: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepo) GetLead(ctx context.Context, leadID int64) (*Lead, error) {
	return scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE lead_id=$1`, leadID))
}

func (r *postgresRepo) ListItems(ctx context.Context, leadID int64) ([]*LeadItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT lead_item_id, lead_id, item_description, category, brand, quantity
		FROM lead_items WHERE lead_id=$1 ORDER BY lead_item_id ASC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LeadItem
	for rows.Next() {
		item := &LeadItem{}
		if err := rows.Scan(&item.LeadItemID, &item.LeadID, &item.ItemDescription,
			&item.Category, &item.Brand, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) ListHistory(ctx context.Context, leadID int64) ([]*HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT h.status_id, h.status, h.update_timestamp, h.notes,
		       e.name AS updated_by_name, e.employee_id AS updated_by
		FROM lead_status_history h
		LEFT JOIN employees e ON e.employee_id = h.updated_by
		WHERE h.lead_id=$1
		ORDER BY h.update_timestamp DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []*HistoryEntry
	for rows.Next() {
		entry := &HistoryEntry{LeadID: leadID}
		if err := rows.Scan(&entry.StatusID, &entry.Status, &entry.UpdateTimestamp,
			&entry.Notes, &entry.UpdatedByName, &entry.UpdatedBy); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (r *postgresRepo) HasItemsOutside(ctx context.Context, leadID int64, domain identity.Category) (bool, error) {
	var outside bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
		  SELECT 1 FROM lead_items WHERE lead_id=$1 AND category <> $2
		)`, leadID, domain).Scan(&outside)
	return outside, err
}

// AssignLead reads the prior assignee and writes the new one within one
// transaction so two concurrent assigns cannot both observe the same prior
// assignee.
func (r *postgresRepo) AssignLead(ctx context.Context, leadID, assignedTo, assignedBy int64, reason *string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var current sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT assigned_to FROM leads WHERE lead_id=$1 FOR UPDATE`, leadID).Scan(&current)
	if err != nil {
		return false, err
	}

	transferred := current.Valid && current.Int64 != assignedTo

	_, err = tx.ExecContext(ctx, `
		UPDATE leads SET assigned_to=$1, assigned_by=$2 WHERE lead_id=$3`,
		assignedTo, assignedBy, leadID)
	if err != nil {
		return false, fmt.Errorf("update lead assignee: %w", err)
	}

	var prev *int64
	if current.Valid {
		prev = &current.Int64
	}
	note := assignmentNote(prev, assignedTo, reason)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lead_status_history (lead_id, status, updated_by, notes)
		VALUES ($1,'Assigned',$2,$3)`,
		leadID, assignedBy, note)
	if err != nil {
		return false, fmt.Errorf("insert lead_status_history: %w", err)
	}

	if transferred {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO lead_transfers (lead_id, from_employee_id, to_employee_id, transfer_reason)
			VALUES ($1,$2,$3,$4)`,
			leadID, current.Int64, assignedTo, reason)
		if err != nil {
			return false, fmt.Errorf("insert lead_transfer: %w", err)
		}
	}

	return transferred, tx.Commit()
}

// UpdateStatus mutates the lead and appends the history row in one
// transaction. value_closed is only ever written for Closed Won and falls
// back to the existing value when the caller supplies none.
func (r *postgresRepo) UpdateStatus(ctx context.Context, leadID int64, status Status, valueClosed *decimal.Decimal, notes *string, actor int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if status.IsClosing() {
		_, err = tx.ExecContext(ctx, `
			UPDATE leads
			   SET status = $1,
			       closed_date = CURRENT_DATE,
			       value_closed = CASE WHEN $3 THEN COALESCE($2, value_closed)
			                           ELSE value_closed
			                      END
			 WHERE lead_id = $4`,
			status, valueClosed, status == StatusClosedWon, leadID)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE leads SET status=$1 WHERE lead_id=$2`, status, leadID)
	}
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lead_status_history (lead_id, status, updated_by, notes)
		VALUES ($1,$2,$3,$4)`,
		leadID, status, actor, notes)
	if err != nil {
		return fmt.Errorf("insert lead_status_history: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]*Lead, int, error) {
	var where []string
	var args []interface{}
	p := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AssignedTo != nil {
		where = append(where, `assigned_to = `+p(*filter.AssignedTo))
	}
	if filter.CreatedBy != nil {
		where = append(where, `created_by = `+p(*filter.CreatedBy))
	}
	if filter.AssignedBy != nil {
		where = append(where, `assigned_by = `+p(*filter.AssignedBy))
	}
	if filter.Status != nil {
		where = append(where, `status = `+p(*filter.Status))
	}
	if filter.Source != "" {
		where = append(where, `COALESCE(source,'') ILIKE `+p("%"+filter.Source+"%"))
	}
	if filter.Query != "" {
		v := p("%" + filter.Query + "%")
		where = append(where,
			`(name ILIKE `+v+` OR contact_number ILIKE `+v+` OR COALESCE(email,'') ILIKE `+v+`)`)
	}
	if filter.DateFrom != nil {
		where = append(where, `enquiry_date >= `+p(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where = append(where, `enquiry_date <= `+p(*filter.DateTo))
	}
	if filter.UnassignedOnly {
		where = append(where, `assigned_to IS NULL`)
	}
	if filter.Domain != nil {
		where = append(where, `NOT EXISTS (
			SELECT 1 FROM lead_items li WHERE li.lead_id = leads.lead_id AND li.category <> `+p(*filter.Domain)+`
		)`)
	}
	if filter.SalesSelf != nil {
		a, b := p(*filter.SalesSelf), p(*filter.SalesSelf)
		where = append(where, `(assigned_to = `+a+` OR created_by = `+b+`)`)
	}

	whereSQL := ""
	for i, w := range where {
		if i == 0 {
			whereSQL = ` WHERE ` + w
		} else {
			whereSQL += ` AND ` + w
		}
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leads`+whereSQL, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + leadColumns + ` FROM leads` + whereSQL +
		` ORDER BY enquiry_date DESC, lead_id DESC LIMIT ` + p(limit) + ` OFFSET ` + p(filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var leads []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	return leads, total, rows.Err()
}

func (r *postgresRepo) ListTransfers(ctx context.Context, leadID int64) ([]*Transfer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.transfer_date, t.transfer_reason,
		       fe.employee_id AS from_id, COALESCE(fe.name, fe.email) AS from_name,
		       te.employee_id AS to_id,   COALESCE(te.name, te.email) AS to_name
		FROM lead_transfers t
		LEFT JOIN employees fe ON fe.employee_id = t.from_employee_id
		LEFT JOIN employees te ON te.employee_id = t.to_employee_id
		WHERE t.lead_id = $1
		ORDER BY t.transfer_date DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var transfers []*Transfer
	for rows.Next() {
		t := &Transfer{LeadID: leadID}
		if err := rows.Scan(&t.ID, &t.TransferDate, &t.TransferReason,
			&t.FromEmployeeID, &t.FromName, &t.ToEmployeeID, &t.ToName); err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*Lead, error) {
	lead := &Lead{}
	err := row.Scan(&lead.LeadID, &lead.StoreID, &lead.Name, &lead.ContactNumber,
		&lead.Email, &lead.Source, &lead.SourceDetail, &lead.EnquiryDate,
		&lead.CreatedBy, &lead.AssignedTo, &lead.AssignedBy, &lead.Status,
		&lead.ValueClosed, &lead.ClosedDate)
	if err != nil {
		return nil, err
	}
	return lead, nil
}

// assignmentNote composes the history note distinguishing a plain assignment
// from a transfer between two distinct employees.
func assignmentNote(prev *int64, to int64, reason *string) string {
	if prev == nil || *prev == to {
		return fmt.Sprintf("Assigned to #%d", to)
	}
	note := fmt.Sprintf("Transferred from #%d to #%d", *prev, to)
	if reason != nil && *reason != "" {
		note += " - " + *reason
	}
	return note
}
