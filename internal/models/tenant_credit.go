package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TenantCredit books the part of a verified amount that exceeded every
// outstanding record on the lease. Overpayments are never dropped and never
// pushed onto a ledger row past its amount_due + late_fee; they accumulate
// here and are offset against future charges by the admin.
type TenantCredit struct {
	ID                 int             `json:"id"`
	LeaseID            int             `json:"lease_id"`
	TenantID           int             `json:"tenant_id"`
	Amount             decimal.Decimal `json:"amount"`
	SourceSubmissionID *int            `json:"source_submission_id,omitempty"`
	Notes              string          `json:"notes,omitempty"`
	CreatedBy          int             `json:"created_by"`
	CreatedAt          time.Time       `json:"created_at"`
}
