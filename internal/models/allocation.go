package models

import (
	"github.com/shopspring/decimal"
)

// RecordAllocation is the outcome of applying part of a verified amount to
// one ledger row.
type RecordAllocation struct {
	RecordID  int
	Applied   decimal.Decimal
	NewPaid   decimal.Decimal
	NewStatus PaymentStatus
}

// AllocationResult is the full FIFO allocation of a verified amount across a
// lease's unpaid records. Remainder is whatever could not be absorbed; the
// caller books it as tenant credit.
type AllocationResult struct {
	Allocations []RecordAllocation
	Remainder   decimal.Decimal
}

// AllocateAmount distributes amount across records oldest-due-first. Each
// record absorbs up to its outstanding balance (amount_due + late_fee -
// amount_paid); the rest carries forward. amount_paid never exceeds
// amount_due + late_fee on any single record.
//
// records must already be ordered by due_date ascending; rows with nothing
// outstanding are skipped.
func AllocateAmount(amount decimal.Decimal, records []*PaymentRecord) AllocationResult {
	result := AllocationResult{Remainder: amount}

	for _, rec := range records {
		if !result.Remainder.IsPositive() {
			break
		}
		outstanding := rec.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}

		applied := decimal.Min(result.Remainder, outstanding)
		newPaid := rec.AmountPaid.Add(applied)

		status := PaymentPartial
		if newPaid.GreaterThanOrEqual(rec.AmountDue.Add(rec.LateFee)) {
			status = PaymentPaid
		}

		result.Allocations = append(result.Allocations, RecordAllocation{
			RecordID:  rec.ID,
			Applied:   applied,
			NewPaid:   newPaid,
			NewStatus: status,
		})
		result.Remainder = result.Remainder.Sub(applied)
	}

	return result
}
