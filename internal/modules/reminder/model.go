package reminder

import "time"

// ReasonUntouched marks reminders raised by the daily sweep for open leads
// with no status activity in three days.
const ReasonUntouched = "untouched_3_days"

// RetailReminder is a nudge on a retail lead, surfaced to the assigned
// salesperson and the domain managers.
type RetailReminder struct {
	ReminderID int64     `json:"reminder_id"`
	LeadID     int64     `json:"lead_id"`
	RemindAt   time.Time `json:"remind_at"`
	Reason     string    `json:"reason"`
	Done       bool      `json:"done"`
	LeadName   string    `json:"lead_name"`
	LeadStatus string    `json:"status"`
}
