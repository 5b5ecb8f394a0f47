package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VerificationStatus is the lifecycle state of a tenant payment-proof
// submission. A submission leaves pending exactly once; verified and
// rejected are terminal.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Payment methods accepted by the tenant app
const (
	MethodMpesa        = "mpesa"
	MethodAirtelMoney  = "airtel_money"
	MethodBankTransfer = "bank_transfer"
	MethodCash         = "cash"
	MethodCheck        = "check"
	MethodOther        = "other"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodMpesa, MethodAirtelMoney, MethodBankTransfer, MethodCash, MethodCheck, MethodOther:
		return true
	}
	return false
}

// PaymentSubmission is a payment proof created by a tenant from the tenant
// app. The dashboard queries these and verifies or rejects them; the row is
// never deleted afterwards (audit trail).
type PaymentSubmission struct {
	ID                   int                `json:"id"`
	LeaseID              int                `json:"lease_id"`
	TenantID             int                `json:"tenant_id"`
	PropertyID           int                `json:"property_id"`
	UnitID               int                `json:"unit_id"`
	TenantName           string             `json:"tenant_name"`
	TenantPhone          string             `json:"tenant_phone"`
	PropertyName         string             `json:"property_name"`
	UnitLabel            string             `json:"unit_label"`
	LeaseNumber          string             `json:"lease_number"`
	Amount               decimal.Decimal    `json:"amount"` // tenant-claimed
	PaymentMethod        string             `json:"payment_method"`
	TransactionReference string             `json:"transaction_reference"`
	TransactionDate      time.Time          `json:"transaction_date"`
	SubmissionDate       time.Time          `json:"submission_date"`
	TenantNotes          string             `json:"tenant_notes,omitempty"`
	VerificationStatus   VerificationStatus `json:"verification_status"`
	AdminNotes           string             `json:"admin_notes,omitempty"`
	VerifiedAmount       *decimal.Decimal   `json:"verified_amount,omitempty"`
	VerifiedDate         *time.Time         `json:"verified_date,omitempty"`
	VerifiedBy           *int               `json:"verified_by,omitempty"`
	VerifiedByName       string             `json:"verified_by_name,omitempty"`
	// CurrentBalance is a display snapshot taken at submission time; the
	// ledger, not this field, is authoritative for reconciliation.
	CurrentBalance decimal.Decimal `json:"current_balance"`
	AppliedAt      *time.Time      `json:"applied_at,omitempty"`
	// Version increments on every mutation; clients can detect that the row
	// they are looking at is stale.
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VerifyRequest is the body of PUT /{id}/verify
type VerifyRequest struct {
	AdminNotes     string           `json:"admin_notes"`
	VerifiedAmount *decimal.Decimal `json:"verified_amount,omitempty"` // defaults to claimed amount
	ApplyToAccount bool             `json:"apply_to_account"`
}

// RejectRequest is the body of PUT /{id}/reject
type RejectRequest struct {
	AdminNotes string `json:"admin_notes"`
}

// Bulk actions
const (
	BulkActionVerify = "verify"
	BulkActionReject = "reject"
)

// BulkVerifyRequest is the body of PUT /bulk-verify
type BulkVerifyRequest struct {
	SubmissionIDs   []int  `json:"submission_ids"`
	Action          string `json:"action"` // verify or reject
	AdminNotes      string `json:"admin_notes"`
	ApplyToAccounts bool   `json:"apply_to_accounts"`
}

// BulkFailure reports one submission that could not be processed in a batch
type BulkFailure struct {
	SubmissionID int    `json:"submission_id"`
	Reason       string `json:"reason"`
}

// BulkVerifyResult is the per-item outcome summary of a bulk action
type BulkVerifyResult struct {
	Succeeded []int         `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// SubmissionFilter mirrors the dashboard's list query params
type SubmissionFilter struct {
	Status        string
	Search        string
	PaymentMethod string
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	Limit         int
}

// Pagination is the page envelope the dashboard expects
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
	Limit       int `json:"limit"`
}

// SubmissionList is the response of the list endpoint
type SubmissionList struct {
	Submissions []*PaymentSubmission `json:"submissions"`
	Pagination  *Pagination          `json:"pagination"`
}

// VerificationStats feeds the dashboard header cards
type VerificationStats struct {
	PendingCount       int             `json:"pending_count"`
	VerifiedToday      int             `json:"verified_today"`
	RejectedCount      int             `json:"rejected_count"`
	TotalPendingAmount decimal.Decimal `json:"total_pending_amount"`
}

// TransitionParams carries one verify/reject decision into the store. The
// store applies it atomically: status CAS plus ledger allocation in a single
// database transaction.
type TransitionParams struct {
	SubmissionID   int
	Action         string // BulkActionVerify or BulkActionReject
	AdminNotes     string
	VerifiedAmount decimal.Decimal // resolved by the service; ignored on reject
	ApplyToAccount bool
	ActorID        int
}
