package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lease is read-mostly in this service: the dashboard's lease CRUD lives
// elsewhere, but verification and the monthly generator need rent terms.
type Lease struct {
	ID                int             `json:"id"`
	LeaseNumber       string          `json:"lease_number"`
	PropertyID        int             `json:"property_id"`
	UnitID            int             `json:"unit_id"`
	TenantID          int             `json:"tenant_id"`
	PrimaryTenantName string          `json:"primary_tenant_name"`
	TenantPhone       string          `json:"tenant_phone"`
	PropertyName      string          `json:"property_name"`
	UnitLabel         string          `json:"unit_label"`
	MonthlyRent       decimal.Decimal `json:"monthly_rent"`
	RentDueDay        int             `json:"rent_due_day"`
	GracePeriodDays   int             `json:"grace_period_days"`
	Status            string          `json:"status"` // active, terminated, expired
	StartDate         time.Time       `json:"start_date"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

const LeaseStatusActive = "active"

// LeaseBalance is the outstanding position of a lease, derived from its
// unpaid payment records and any accumulated credit.
type LeaseBalance struct {
	LeaseID       int             `json:"lease_id"`
	TotalDue      decimal.Decimal `json:"total_due"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
	OverdueCount  int             `json:"overdue_count"`
}
