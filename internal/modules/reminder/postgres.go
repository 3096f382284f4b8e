package reminder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nexatech/crm-backend/internal/modules/identity"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const reminderColumns = `r.reminder_id, r.lead_id, r.remind_at, r.reason, r.done,
	l.name AS lead_name, l.status`

func (r *postgresRepo) ListForSales(ctx context.Context, employeeID int64) ([]*RetailReminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM retail_lead_reminders r
		JOIN leads l ON l.lead_id = r.lead_id
		WHERE r.done = FALSE AND l.assigned_to = $1
		ORDER BY r.remind_at DESC
		LIMIT 200`, employeeID)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

func (r *postgresRepo) ListForDomain(ctx context.Context, category identity.Category) ([]*RetailReminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+reminderColumns+`
		FROM retail_lead_reminders r
		JOIN leads l ON l.lead_id = r.lead_id
		WHERE r.done = FALSE
		  AND EXISTS (SELECT 1 FROM lead_items li WHERE li.lead_id = l.lead_id AND li.category = $1)
		ORDER BY r.remind_at DESC
		LIMIT 200`, category)
	if err != nil {
		return nil, err
	}
	return collectReminders(rows)
}

func (r *postgresRepo) MarkDone(ctx context.Context, reminderID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE retail_lead_reminders SET done = TRUE WHERE reminder_id = $1`, reminderID)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresRepo) SweepUntouchedRetail(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO retail_lead_reminders (lead_id, remind_at, reason)
		SELECT l.lead_id, $1, $2
		FROM leads l
		WHERE l.status NOT IN ('Closed Won','Closed Lost')
		  AND l.lead_id NOT IN (
			SELECT lead_id FROM lead_status_history
			WHERE update_timestamp >= $1::timestamptz - INTERVAL '3 days'
		  )
		  AND l.lead_id NOT IN (
			SELECT lead_id FROM retail_lead_reminders
			WHERE done = FALSE AND remind_at::date = $1::date
		  )`, now, ReasonUntouched)
	if err != nil {
		return 0, fmt.Errorf("sweep untouched retail leads: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresRepo) SweepCorporateFollowUps(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO corporate_lead_reminders (corporate_lead_id, remind_at, reminder_type, notes)
		SELECT cl.corporate_lead_id, $1, 'follow_up', '1-week post-closure follow-up'
		FROM corporate_leads cl
		WHERE cl.closed_date IS NOT NULL
		  AND cl.closed_date = $1::date - INTERVAL '7 days'
		  AND NOT EXISTS (
			SELECT 1 FROM corporate_lead_reminders r
			WHERE r.corporate_lead_id = cl.corporate_lead_id
			  AND r.reminder_type = 'follow_up'
			  AND r.remind_at::date = $1::date
		  )`, now)
	if err != nil {
		return 0, fmt.Errorf("sweep corporate follow-ups: %w", err)
	}
	return result.RowsAffected()
}

func collectReminders(rows *sql.Rows) ([]*RetailReminder, error) {
	defer rows.Close()
	var reminders []*RetailReminder
	for rows.Next() {
		rem := &RetailReminder{}
		if err := rows.Scan(&rem.ReminderID, &rem.LeadID, &rem.RemindAt, &rem.Reason,
			&rem.Done, &rem.LeadName, &rem.LeadStatus); err != nil {
			return nil, err
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
