package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
	"rental-backend/internal/sms"
)

type fakeLedgerStore struct {
	records   map[int]*models.PaymentRecord
	targets   map[int]*models.ReminderTarget
	generated []*models.PaymentRecord
	marked    int
	reminders []int
}

func (f *fakeLedgerStore) Get(ctx context.Context, id int) (*models.PaymentRecord, error) {
	r, ok := f.records[id]
	if !ok {
		return nil, apperrors.NotFound("payment record not found")
	}
	return r, nil
}

func (f *fakeLedgerStore) List(ctx context.Context, filter models.RecordFilter) ([]*models.PaymentRecord, error) {
	var out []*models.PaymentRecord
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeLedgerStore) GenerateMonthly(ctx context.Context, month, year int) ([]*models.PaymentRecord, error) {
	return f.generated, nil
}

func (f *fakeLedgerStore) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	return f.marked, nil
}

func (f *fakeLedgerStore) RecordPayment(ctx context.Context, recordID int, req models.RecordPaymentRequest, actorID int) (*models.PaymentRecord, error) {
	r, ok := f.records[recordID]
	if !ok {
		return nil, apperrors.NotFound("payment record not found")
	}
	if req.Amount.GreaterThan(r.Outstanding()) {
		return nil, apperrors.Validation("amount exceeds outstanding balance")
	}
	r.AmountPaid = r.AmountPaid.Add(req.Amount)
	return r, nil
}

func (f *fakeLedgerStore) ReminderTargets(ctx context.Context, paymentIDs []int) ([]*models.ReminderTarget, error) {
	var out []*models.ReminderTarget
	for _, id := range paymentIDs {
		if t, ok := f.targets[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) LogReminder(ctx context.Context, paymentRecordID int, reminderType string, sentBy int) error {
	f.reminders = append(f.reminders, paymentRecordID)
	return nil
}

// fakeSMS fails sends to any phone listed in failPhones
type fakeSMS struct {
	sent       []string
	failPhones map[string]bool
}

func (f *fakeSMS) SendSMS(phone, message, messageType string, tenantID int) error {
	if f.failPhones[phone] {
		return errors.New("gateway timeout")
	}
	f.sent = append(f.sent, phone)
	return nil
}

func (f *fakeSMS) SetLogRepository(repo sms.LogRepo) {}

func TestGenerateMonthlyPaymentsValidation(t *testing.T) {
	svc := NewLedgerService(&fakeLedgerStore{}, nil)

	_, err := svc.GenerateMonthlyPayments(context.Background(), models.GeneratePaymentsRequest{Month: 13, Year: 2026})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.GenerateMonthlyPayments(context.Background(), models.GeneratePaymentsRequest{Month: 1, Year: 1980})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestGenerateMonthlyPaymentsDefaultsToCurrentMonth(t *testing.T) {
	store := &fakeLedgerStore{generated: []*models.PaymentRecord{{ID: 1}, {ID: 2}}}
	svc := NewLedgerService(store, nil)

	result, err := svc.GenerateMonthlyPayments(context.Background(), models.GeneratePaymentsRequest{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.NotZero(t, result.Month)
	assert.NotZero(t, result.Year)
}

func TestRecordPaymentValidation(t *testing.T) {
	record := &models.PaymentRecord{
		ID:        1,
		AmountDue: decimal.RequireFromString("20000"),
	}
	store := &fakeLedgerStore{records: map[int]*models.PaymentRecord{1: record}}
	svc := NewLedgerService(store, nil)

	_, err := svc.RecordPayment(context.Background(), 1, models.RecordPaymentRequest{
		Amount: decimal.Zero,
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.RecordPayment(context.Background(), 1, models.RecordPaymentRequest{
		Amount:        decimal.RequireFromString("500"),
		PaymentMethod: "barter",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	got, err := svc.RecordPayment(context.Background(), 1, models.RecordPaymentRequest{
		Amount:        decimal.RequireFromString("500"),
		PaymentMethod: models.MethodCash,
	}, 7)
	require.NoError(t, err)
	assert.True(t, got.AmountPaid.Equal(decimal.RequireFromString("500")))
}

func TestSendRemindersPartialFailure(t *testing.T) {
	due := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	store := &fakeLedgerStore{
		targets: map[int]*models.ReminderTarget{
			1: {PaymentID: 1, TenantID: 10, TenantName: "Jane", TenantPhone: "+254700000001", PropertyName: "Green Court", DueDate: due, Outstanding: decimal.RequireFromString("15000")},
			2: {PaymentID: 2, TenantID: 11, TenantName: "Otieno", TenantPhone: "", PropertyName: "Green Court", DueDate: due, Outstanding: decimal.RequireFromString("9000")},
			3: {PaymentID: 3, TenantID: 12, TenantName: "Amina", TenantPhone: "+254700000003", PropertyName: "Green Court", DueDate: due, Outstanding: decimal.RequireFromString("12000")},
		},
	}
	smsProvider := &fakeSMS{failPhones: map[string]bool{"+254700000003": true}}
	svc := NewLedgerService(store, smsProvider)

	result, err := svc.SendReminders(context.Background(), models.SendRemindersRequest{
		PaymentIDs:   []int{1, 2, 3, 4},
		ReminderType: models.ReminderOverdue,
	}, 7)

	require.NoError(t, err)
	assert.Equal(t, []int{1}, result.Sent)
	require.Len(t, result.Failed, 3)
	assert.Equal(t, []string{"+254700000001"}, smsProvider.sent)
	// Only the successful send was logged
	assert.Equal(t, []int{1}, store.reminders)
}

func TestSendRemindersValidation(t *testing.T) {
	svc := NewLedgerService(&fakeLedgerStore{}, &fakeSMS{})

	_, err := svc.SendReminders(context.Background(), models.SendRemindersRequest{
		PaymentIDs:   []int{1},
		ReminderType: "postcard",
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.SendReminders(context.Background(), models.SendRemindersRequest{
		ReminderType: models.ReminderUpcoming,
	}, 7)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReminderMessageVariants(t *testing.T) {
	target := &models.ReminderTarget{
		TenantName:   "Jane",
		PropertyName: "Green Court",
		DueDate:      time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		Outstanding:  decimal.RequireFromString("15000"),
	}

	assert.Contains(t, reminderMessage(models.ReminderUpcoming, target), "reminder")
	assert.Contains(t, reminderMessage(models.ReminderOverdue, target), "overdue")
	assert.Contains(t, reminderMessage(models.ReminderFinal, target), "FINAL NOTICE")
	for _, rt := range []string{models.ReminderUpcoming, models.ReminderOverdue, models.ReminderFinal} {
		assert.Contains(t, reminderMessage(rt, target), "KES 15000.00")
	}
}
