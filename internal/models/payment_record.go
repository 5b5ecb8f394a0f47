package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the collection state of one lease-period rent charge
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// PaymentRecord is one row of the rent ledger: the rent due for a lease in
// one period, and what has been collected against it so far.
type PaymentRecord struct {
	ID               int             `json:"id"`
	LeaseID          int             `json:"lease_id"`
	LeaseNumber      string          `json:"lease_number,omitempty"`
	TenantName       string          `json:"tenant_name,omitempty"`
	PropertyName     string          `json:"property_name,omitempty"`
	Period           time.Time       `json:"period"` // first day of the billing month
	DueDate          time.Time       `json:"due_date"`
	AmountDue        decimal.Decimal `json:"amount_due"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	LateFee          decimal.Decimal `json:"late_fee"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	PaymentDate      *time.Time      `json:"payment_date,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	ProcessedBy      *int            `json:"processed_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Outstanding is what remains to be collected on this record.
func (r *PaymentRecord) Outstanding() decimal.Decimal {
	return r.AmountDue.Add(r.LateFee).Sub(r.AmountPaid)
}

// RecordFilter narrows the ledger list endpoint
type RecordFilter struct {
	LeaseID int
	Status  string
	Month   int
	Year    int
	Page    int
	Limit   int
}

// RecordPaymentRequest is the dashboard's manual "record payment" action
// against a specific ledger row.
type RecordPaymentRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Notes            string          `json:"notes"`
}

// GeneratePaymentsRequest is the body of POST /generate
type GeneratePaymentsRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// GeneratePaymentsResult summarises a monthly generation run
type GeneratePaymentsResult struct {
	Month   int              `json:"month"`
	Year    int              `json:"year"`
	Created int              `json:"created"`
	Records []*PaymentRecord `json:"records"`
}

// Reminder types the notification collaborator understands
const (
	ReminderUpcoming = "upcoming"
	ReminderOverdue  = "overdue"
	ReminderFinal    = "final_notice"
)

// SendRemindersRequest is the body of POST /send-reminders
type SendRemindersRequest struct {
	PaymentIDs   []int  `json:"payment_ids"`
	ReminderType string `json:"reminder_type"`
}

// ReminderTarget is one ledger row joined with the contact details the SMS
// collaborator needs.
type ReminderTarget struct {
	PaymentID   int             `json:"payment_id"`
	LeaseID     int             `json:"lease_id"`
	TenantID    int             `json:"tenant_id"`
	TenantName  string          `json:"tenant_name"`
	TenantPhone string          `json:"tenant_phone"`
	PropertyName string         `json:"property_name"`
	DueDate     time.Time       `json:"due_date"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// SendRemindersResult reports per-id reminder outcomes
type SendRemindersResult struct {
	Sent   []int         `json:"sent"`
	Failed []BulkFailure `json:"failed"`
}

// DueDateFor computes the due date for a billing period from the lease's
// rent_due_day, clamping to the last day of short months (31st -> Feb 28/29).
func DueDateFor(year, month, rentDueDay int, loc *time.Location) time.Time {
	if rentDueDay < 1 {
		rentDueDay = 1
	}
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, loc).Day()
	if rentDueDay > lastDay {
		rentDueDay = lastDay
	}
	return time.Date(year, time.Month(month), rentDueDay, 0, 0, 0, 0, loc)
}
