package corporate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const leadColumns = `corporate_lead_id, name, contact_number, email, status, manager_id,
	enquiry_date, closed_date, last_quoted_value, last_quoted_at`

func (r *postgresRepo) CreateLead(ctx context.Context, lead *Lead) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var enquiry interface{}
	if !lead.EnquiryDate.IsZero() {
		enquiry = lead.EnquiryDate
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO corporate_leads (name, contact_number, email, status, manager_id, enquiry_date)
		VALUES ($1,$2,$3,'New',$4, COALESCE($5::date, CURRENT_DATE))
		RETURNING corporate_lead_id, enquiry_date`,
		lead.Name, lead.ContactNumber, lead.Email, lead.ManagerID, enquiry).
		Scan(&lead.CorporateLeadID, &lead.EnquiryDate)
	if err != nil {
		return fmt.Errorf("insert corporate_lead: %w", err)
	}
	lead.Status = StatusNew

	_, err = tx.ExecContext(ctx, `
		INSERT INTO corporate_lead_status_history (corporate_lead_id, status, notes, updated_by)
		VALUES ($1,'New','Lead created',$2)`,
		lead.CorporateLeadID, lead.ManagerID)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO corporate_lead_reminders (corporate_lead_id, remind_at, reminder_type, notes)
		VALUES ($1, NOW() + INTERVAL '3 days', 'lead_checkin', 'Check in on new lead')`,
		lead.CorporateLeadID)
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepo) GetLead(ctx context.Context, managerID, leadID int64) (*Lead, error) {
	return scanLead(r.db.QueryRowContext(ctx, `
		SELECT `+leadColumns+` FROM corporate_leads
		WHERE corporate_lead_id=$1 AND manager_id=$2`, leadID, managerID))
}

func (r *postgresRepo) List(ctx context.Context, managerID int64, filter ListFilter) ([]*Lead, int, error) {
	where := `WHERE manager_id = $1`
	args := []interface{}{managerID}
	p := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != nil {
		where += ` AND status = ` + p(*filter.Status)
	}
	if filter.Query != "" {
		v := p("%" + filter.Query + "%")
		where += ` AND (name ILIKE ` + v + ` OR COALESCE(email,'') ILIKE ` + v + ` OR contact_number ILIKE ` + v + `)`
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM corporate_leads `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leadColumns + ` FROM corporate_leads ` + where +
		` ORDER BY corporate_lead_id DESC LIMIT ` + p(filter.Limit) + ` OFFSET ` + p(filter.Offset)
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

func (r *postgresRepo) ListItems(ctx context.Context, leadID int64) ([]*Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id, corporate_lead_id, bill_of_material, quantity, requirements, last_updated
		FROM corporate_lead_items WHERE corporate_lead_id=$1 ORDER BY item_id ASC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Item
	for rows.Next() {
		item := &Item{}
		if err := rows.Scan(&item.ItemID, &item.CorporateLeadID, &item.BillOfMaterial,
			&item.Quantity, &item.Requirements, &item.LastUpdated); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) UpdateLead(ctx context.Context, managerID, leadID int64, patch LeadPatch, notes *string, actor int64) (*Lead, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var sets []string
	var args []interface{}
	p := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if patch.Name != nil {
		sets = append(sets, `name = `+p(*patch.Name))
	}
	if patch.ContactNumber != nil {
		sets = append(sets, `contact_number = `+p(*patch.ContactNumber))
	}
	if patch.Email != nil {
		sets = append(sets, `email = `+p(*patch.Email))
	}
	if patch.Status != nil {
		sets = append(sets, `status = `+p(*patch.Status))
	}

	setSQL := ""
	for i, s := range sets {
		if i > 0 {
			setSQL += ", "
		}
		setSQL += s
	}
	query := `UPDATE corporate_leads SET ` + setSQL +
		` WHERE corporate_lead_id = ` + p(leadID) + ` AND manager_id = ` + p(managerID) +
		` RETURNING ` + leadColumns
	lead, err := scanLead(tx.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO corporate_lead_status_history (corporate_lead_id, status, notes, updated_by)
			VALUES ($1,$2,$3,$4)`,
			leadID, *patch.Status, notes, actor)
		if err != nil {
			return nil, fmt.Errorf("insert status history: %w", err)
		}
	}

	return lead, tx.Commit()
}

func (r *postgresRepo) AddItem(ctx context.Context, item *Item) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO corporate_lead_items (corporate_lead_id, bill_of_material, quantity, requirements)
		VALUES ($1,$2,$3,$4)
		RETURNING item_id, last_updated`,
		item.CorporateLeadID, item.BillOfMaterial, item.Quantity, item.Requirements).
		Scan(&item.ItemID, &item.LastUpdated)
}

func (r *postgresRepo) UpdateItem(ctx context.Context, managerID, itemID int64, patch ItemPatch) (*Item, error) {
	var sets []string
	var args []interface{}
	p := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if patch.BillOfMaterial != nil {
		sets = append(sets, `bill_of_material = `+p(*patch.BillOfMaterial))
	}
	if patch.Quantity != nil {
		sets = append(sets, `quantity = `+p(*patch.Quantity))
	}
	if patch.Requirements != nil {
		sets = append(sets, `requirements = `+p(*patch.Requirements))
	}

	setSQL := ""
	for i, s := range sets {
		if i > 0 {
			setSQL += ", "
		}
		setSQL += s
	}
	query := `UPDATE corporate_lead_items SET ` + setSQL + `, last_updated = NOW()
		WHERE item_id = ` + p(itemID) + `
		  AND corporate_lead_id IN (SELECT corporate_lead_id FROM corporate_leads WHERE manager_id = ` + p(managerID) + `)
		RETURNING item_id, corporate_lead_id, bill_of_material, quantity, requirements, last_updated`

	item := &Item{}
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&item.ItemID, &item.CorporateLeadID, &item.BillOfMaterial,
			&item.Quantity, &item.Requirements, &item.LastUpdated)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) CloseLead(ctx context.Context, managerID, leadID int64, status Status, note *string, actor int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE corporate_leads SET status=$1, closed_date = CURRENT_DATE
		WHERE corporate_lead_id=$2 AND manager_id=$3`,
		status, leadID, managerID)
	if err != nil {
		return fmt.Errorf("close lead: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO corporate_lead_status_history (corporate_lead_id, status, notes, updated_by)
		VALUES ($1,$2,$3,$4)`,
		leadID, status, note, actor)
	if err != nil {
		return fmt.Errorf("insert status history: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO corporate_lead_reminders (corporate_lead_id, remind_at, reminder_type, notes)
		VALUES ($1, NOW() + INTERVAL '7 days', 'follow_up', 'Auto scheduled 1-week follow-up')`,
		leadID)
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}

	return tx.Commit()
}

// AddQuote inserts the quote row and refreshes the parent lead's quote cache
// in one transaction so the cache never diverges from the latest quote.
func (r *postgresRepo) AddQuote(ctx context.Context, quote *Quote) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO corporate_lead_quotes (corporate_lead_id, amount, notes)
		VALUES ($1,$2,$3)
		RETURNING quote_id, created_at`,
		quote.CorporateLeadID, quote.Amount, quote.Notes).
		Scan(&quote.QuoteID, &quote.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE corporate_leads
		   SET last_quoted_value = $2, last_quoted_at = $3
		 WHERE corporate_lead_id = $1`,
		quote.CorporateLeadID, quote.Amount, quote.CreatedAt)
	if err != nil {
		return fmt.Errorf("refresh quote cache: %w", err)
	}

	return tx.Commit()
}

func (r *postgresRepo) ListQuotes(ctx context.Context, leadID int64) ([]*Quote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT quote_id, corporate_lead_id, amount, notes, created_at
		FROM corporate_lead_quotes
		WHERE corporate_lead_id=$1
		ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var quotes []*Quote
	for rows.Next() {
		q := &Quote{}
		if err := rows.Scan(&q.QuoteID, &q.CorporateLeadID, &q.Amount, &q.Notes, &q.CreatedAt); err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (r *postgresRepo) ListHistory(ctx context.Context, managerID, leadID int64) ([]*HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT h.status_id, h.corporate_lead_id, h.status, h.notes, h.updated_by,
		       h.update_timestamp, e.name AS updated_by_name
		FROM corporate_lead_status_history h
		JOIN corporate_leads l ON l.corporate_lead_id = h.corporate_lead_id
		LEFT JOIN employees e ON e.employee_id = h.updated_by
		WHERE h.corporate_lead_id = $1 AND l.manager_id = $2
		ORDER BY h.update_timestamp DESC`, leadID, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []*HistoryEntry
	for rows.Next() {
		entry := &HistoryEntry{}
		if err := rows.Scan(&entry.StatusID, &entry.CorporateLeadID, &entry.Status,
			&entry.Notes, &entry.UpdatedBy, &entry.UpdateTimestamp, &entry.UpdatedByName); err != nil {
			return nil, err
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

func (r *postgresRepo) ListReminders(ctx context.Context, managerID int64, window time.Duration, dueOnly bool) ([]*Reminder, error) {
	query := `
		SELECT r.reminder_id, r.corporate_lead_id, r.remind_at, r.reminder_type,
		       r.notes, r.done, l.name, l.status
		FROM corporate_lead_reminders r
		JOIN corporate_leads l ON l.corporate_lead_id = r.corporate_lead_id
		WHERE l.manager_id = $1
		  AND r.done = FALSE
		  AND r.remind_at <= NOW() + $2::interval`
	if dueOnly {
		query += ` AND r.remind_at <= NOW()`
	}
	query += ` ORDER BY r.remind_at ASC, r.reminder_id ASC LIMIT 200`

	rows, err := r.db.QueryContext(ctx, query, managerID, fmt.Sprintf("%d seconds", int(window.Seconds())))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var reminders []*Reminder
	for rows.Next() {
		rem := &Reminder{}
		if err := rows.Scan(&rem.ReminderID, &rem.CorporateLeadID, &rem.RemindAt,
			&rem.ReminderType, &rem.Notes, &rem.Done, &rem.LeadName, &rem.LeadStatus); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// AckReminder locks the reminder row for the whole transaction so concurrent
// acknowledgements serialize; only the first one past the done check spawns
// the successor check-in.
func (r *postgresRepo) AckReminder(ctx context.Context, managerID, reminderID int64) (AckOutcome, error) {
	var outcome AckOutcome

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return outcome, err
	}
	defer tx.Rollback()

	var leadID int64
	var reminderType ReminderType
	var done bool
	var leadStatus Status
	err = tx.QueryRowContext(ctx, `
		SELECT r.corporate_lead_id, r.reminder_type, r.done, l.status
		FROM corporate_lead_reminders r
		JOIN corporate_leads l ON l.corporate_lead_id = r.corporate_lead_id
		WHERE r.reminder_id = $1 AND l.manager_id = $2
		FOR UPDATE OF r`, reminderID, managerID).
		Scan(&leadID, &reminderType, &done, &leadStatus)
	if err != nil {
		return outcome, err
	}

	if done {
		outcome.AlreadyDone = true
		return outcome, tx.Commit()
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE corporate_lead_reminders SET done = TRUE WHERE reminder_id = $1`, reminderID)
	if err != nil {
		return outcome, fmt.Errorf("ack reminder: %w", err)
	}

	if reminderType == ReminderLeadCheckin && !leadStatus.IsClosing() {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO corporate_lead_reminders (corporate_lead_id, remind_at, reminder_type, notes)
			VALUES ($1, NOW() + INTERVAL '3 days', 'lead_checkin', 'Recurring 3-day check-in')`,
			leadID)
		if err != nil {
			return outcome, fmt.Errorf("spawn successor reminder: %w", err)
		}
		outcome.Respawned = true
	}

	return outcome, tx.Commit()
}

func (r *postgresRepo) InsertDocument(ctx context.Context, doc *Document) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO corporate_lead_documents
		  (corporate_lead_id, doc_type, file_name, stored_path, mime_type, file_size, uploaded_by)
		VALUES ($1,'proposal',$2,$3,$4,$5,$6)
		RETURNING doc_id, doc_type, uploaded_at`,
		doc.CorporateLeadID, doc.FileName, doc.StoredPath, doc.MimeType,
		doc.FileSize, doc.UploadedBy).
		Scan(&doc.DocID, &doc.DocType, &doc.UploadedAt)
}

func (r *postgresRepo) ListDocuments(ctx context.Context, managerID, leadID int64) ([]*Document, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.doc_id, d.corporate_lead_id, d.doc_type, d.file_name, d.stored_path,
		       d.mime_type, d.file_size, d.uploaded_by, d.uploaded_at
		FROM corporate_lead_documents d
		JOIN corporate_leads l ON l.corporate_lead_id = d.corporate_lead_id
		WHERE d.corporate_lead_id = $1 AND l.manager_id = $2 AND d.doc_type = 'proposal'
		ORDER BY d.uploaded_at DESC`, leadID, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []*Document
	for rows.Next() {
		doc := &Document{}
		if err := rows.Scan(&doc.DocID, &doc.CorporateLeadID, &doc.DocType, &doc.FileName,
			&doc.StoredPath, &doc.MimeType, &doc.FileSize, &doc.UploadedBy, &doc.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*Lead, error) {
	lead := &Lead{}
	err := row.Scan(&lead.CorporateLeadID, &lead.Name, &lead.ContactNumber, &lead.Email,
		&lead.Status, &lead.ManagerID, &lead.EnquiryDate, &lead.ClosedDate,
		&lead.LastQuotedValue, &lead.LastQuotedAt)
	if err != nil {
		return nil, err
	}
	return lead, nil
}
