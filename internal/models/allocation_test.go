package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func record(id int, due, paid, lateFee string) *PaymentRecord {
	return &PaymentRecord{
		ID:            id,
		AmountDue:     d(due),
		AmountPaid:    d(paid),
		LateFee:       d(lateFee),
		PaymentStatus: PaymentPending,
	}
}

func TestAllocateAmount(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		records       []*PaymentRecord
		wantAllocs    []RecordAllocation
		wantRemainder string
	}{
		{
			name:   "fills oldest record then partial on next",
			amount: "120",
			records: []*PaymentRecord{
				record(1, "100", "0", "0"),
				record(2, "50", "0", "0"),
			},
			wantAllocs: []RecordAllocation{
				{RecordID: 1, Applied: d("100"), NewPaid: d("100"), NewStatus: PaymentPaid},
				{RecordID: 2, Applied: d("20"), NewPaid: d("20"), NewStatus: PaymentPartial},
			},
			wantRemainder: "0",
		},
		{
			name:   "exact single record",
			amount: "500",
			records: []*PaymentRecord{
				record(1, "500", "0", "0"),
			},
			wantAllocs: []RecordAllocation{
				{RecordID: 1, Applied: d("500"), NewPaid: d("500"), NewStatus: PaymentPaid},
			},
			wantRemainder: "0",
		},
		{
			name:   "partial payment leaves record partial",
			amount: "300",
			records: []*PaymentRecord{
				record(1, "500", "0", "0"),
			},
			wantAllocs: []RecordAllocation{
				{RecordID: 1, Applied: d("300"), NewPaid: d("300"), NewStatus: PaymentPartial},
			},
			wantRemainder: "0",
		},
		{
			name:   "late fee is part of the outstanding balance",
			amount: "550",
			records: []*PaymentRecord{
				record(1, "500", "0", "50"),
			},
			wantAllocs: []RecordAllocation{
				{RecordID: 1, Applied: d("550"), NewPaid: d("550"), NewStatus: PaymentPaid},
			},
			wantRemainder: "0",
		},
		{
			name:   "overpayment surfaces as remainder",
			amount: "700",
			records: []*PaymentRecord{
				record(1, "500", "0", "0"),
			},
			wantAllocs: []RecordAllocation{
				{RecordID: 1, Applied: d("500"), NewPaid: d("500"), NewStatus: PaymentPaid},
			},
			wantRemainder: "200",
		},
		{
			name:          "no unpaid records leaves everything as remainder",
			amount:        "250",
			records:       nil,
			wantAllocs:    nil,
			wantRemainder: "250",
		},
		{
			name:   "already settled record is skipped",
			amount: "100",
			records: []*PaymentRecord{
				record(1, "500", "500", "0"),
				record(2, "500", "0", "0"),
			},
			wantAllocs: []RecordAllocation{
				{RecordID: 2, Applied: d("100"), NewPaid: d("100"), NewStatus: PaymentPartial},
			},
			wantRemainder: "0",
		},
		{
			name:   "partially paid record absorbs only its outstanding",
			amount: "400",
			records: []*PaymentRecord{
				record(1, "500", "300", "0"),
				record(2, "500", "0", "0"),
			},
			wantAllocs: []RecordAllocation{
				{RecordID: 1, Applied: d("200"), NewPaid: d("500"), NewStatus: PaymentPaid},
				{RecordID: 2, Applied: d("200"), NewPaid: d("200"), NewStatus: PaymentPartial},
			},
			wantRemainder: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllocateAmount(d(tt.amount), tt.records)

			require.Len(t, got.Allocations, len(tt.wantAllocs))
			for i, want := range tt.wantAllocs {
				assert.Equal(t, want.RecordID, got.Allocations[i].RecordID)
				assert.True(t, want.Applied.Equal(got.Allocations[i].Applied),
					"applied: want %s got %s", want.Applied, got.Allocations[i].Applied)
				assert.True(t, want.NewPaid.Equal(got.Allocations[i].NewPaid),
					"new paid: want %s got %s", want.NewPaid, got.Allocations[i].NewPaid)
				assert.Equal(t, want.NewStatus, got.Allocations[i].NewStatus)
			}
			assert.True(t, d(tt.wantRemainder).Equal(got.Remainder),
				"remainder: want %s got %s", tt.wantRemainder, got.Remainder)
		})
	}
}

func TestDueDateFor(t *testing.T) {
	loc := time.UTC

	tests := []struct {
		name  string
		year  int
		month int
		day   int
		want  time.Time
	}{
		{"regular day", 2024, 6, 5, time.Date(2024, 6, 5, 0, 0, 0, 0, loc)},
		{"clamped to short february", 2023, 2, 31, time.Date(2023, 2, 28, 0, 0, 0, 0, loc)},
		{"leap year february", 2024, 2, 30, time.Date(2024, 2, 29, 0, 0, 0, 0, loc)},
		{"zero day defaults to first", 2024, 6, 0, time.Date(2024, 6, 1, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueDateFor(tt.year, tt.month, tt.day, loc))
		})
	}
}
