package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/sms"
	"rental-backend/internal/timeutil"
)

// LedgerStore is the rent-ledger persistence the service drives. The pgx
// repository implements it.
type LedgerStore interface {
	Get(ctx context.Context, id int) (*models.PaymentRecord, error)
	List(ctx context.Context, filter models.RecordFilter) ([]*models.PaymentRecord, error)
	GenerateMonthly(ctx context.Context, month, year int) ([]*models.PaymentRecord, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)
	RecordPayment(ctx context.Context, recordID int, req models.RecordPaymentRequest, actorID int) (*models.PaymentRecord, error)
	ReminderTargets(ctx context.Context, paymentIDs []int) ([]*models.ReminderTarget, error)
	LogReminder(ctx context.Context, paymentRecordID int, reminderType string, sentBy int) error
}

type LedgerService struct {
	Store LedgerStore
	SMS   sms.Provider
}

func NewLedgerService(store LedgerStore, smsProvider sms.Provider) *LedgerService {
	return &LedgerService{Store: store, SMS: smsProvider}
}

func (s *LedgerService) GetRecord(ctx context.Context, id int) (*models.PaymentRecord, error) {
	return s.Store.Get(ctx, id)
}

func (s *LedgerService) ListRecords(ctx context.Context, filter models.RecordFilter) ([]*models.PaymentRecord, error) {
	records, err := s.Store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*models.PaymentRecord{}
	}
	return records, nil
}

// GenerateMonthlyPayments creates the rent charges for every active lease for
// one billing month. Re-running for the same month only fills gaps; existing
// rows are left untouched.
func (s *LedgerService) GenerateMonthlyPayments(ctx context.Context, req models.GeneratePaymentsRequest) (*models.GeneratePaymentsResult, error) {
	month, year := req.Month, req.Year
	now := timeutil.Now()
	if month == 0 && year == 0 {
		month, year = int(now.Month()), now.Year()
	}
	if month < 1 || month > 12 {
		return nil, apperrors.Validation(fmt.Sprintf("month must be between 1 and 12, got %d", month))
	}
	if year < 2000 || year > now.Year()+1 {
		return nil, apperrors.Validation(fmt.Sprintf("year %d is out of range", year))
	}

	records, err := s.Store.GenerateMonthly(ctx, month, year)
	if err != nil {
		return nil, err
	}

	log.Printf("[Ledger] generated %d payment records for %d-%02d", len(records), year, month)
	return &models.GeneratePaymentsResult{
		Month:   month,
		Year:    year,
		Created: len(records),
		Records: records,
	}, nil
}

// UpdateOverdueStatuses flips pending and partial records past their grace
// window to overdue. asOf defaults to now.
func (s *LedgerService) UpdateOverdueStatuses(ctx context.Context, asOf time.Time) (int, error) {
	if asOf.IsZero() {
		asOf = timeutil.Now()
	}
	marked, err := s.Store.MarkOverdue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		metrics.OverdueRecordsMarked.Add(float64(marked))
		log.Printf("[Ledger] marked %d records overdue as of %s", marked, asOf.Format("2006-01-02"))
	}
	return marked, nil
}

// RecordPayment books a manual payment (cash at the office, for example)
// against one ledger row.
func (s *LedgerService) RecordPayment(ctx context.Context, recordID int, req models.RecordPaymentRequest, actorID int) (*models.PaymentRecord, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.Validation("payment amount must be greater than zero")
	}
	if req.PaymentMethod != "" && !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, apperrors.Validation(fmt.Sprintf("unknown payment method %q", req.PaymentMethod))
	}
	return s.Store.RecordPayment(ctx, recordID, req, actorID)
}

// SendReminders sends a rent reminder SMS for each selected ledger row. Each
// send is independent; a bad phone number or gateway hiccup on one tenant does
// not stop the rest.
func (s *LedgerService) SendReminders(ctx context.Context, req models.SendRemindersRequest, actorID int) (*models.SendRemindersResult, error) {
	switch req.ReminderType {
	case models.ReminderUpcoming, models.ReminderOverdue, models.ReminderFinal:
	case "":
		req.ReminderType = models.ReminderUpcoming
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown reminder type %q", req.ReminderType))
	}
	if len(req.PaymentIDs) == 0 {
		return nil, apperrors.Validation("no payment records selected")
	}

	targets, err := s.Store.ReminderTargets(ctx, req.PaymentIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*models.ReminderTarget, len(targets))
	for _, t := range targets {
		byID[t.PaymentID] = t
	}

	result := &models.SendRemindersResult{
		Sent:   []int{},
		Failed: []models.BulkFailure{},
	}

	for _, id := range req.PaymentIDs {
		target, ok := byID[id]
		if !ok {
			result.Failed = append(result.Failed, models.BulkFailure{
				SubmissionID: id,
				Reason:       "payment record not found or already settled",
			})
			continue
		}
		if target.TenantPhone == "" {
			result.Failed = append(result.Failed, models.BulkFailure{
				SubmissionID: id,
				Reason:       "tenant has no phone number on file",
			})
			continue
		}

		message := reminderMessage(req.ReminderType, target)
		if err := s.SMS.SendSMS(target.TenantPhone, message, models.SMSTypeReminder, target.TenantID); err != nil {
			result.Failed = append(result.Failed, models.BulkFailure{
				SubmissionID: id,
				Reason:       fmt.Sprintf("sms send failed: %v", err),
			})
			continue
		}

		if err := s.Store.LogReminder(ctx, id, req.ReminderType, actorID); err != nil {
			log.Printf("[Ledger] reminder sent but log write failed for record %d: %v", id, err)
		}
		metrics.RemindersSent.WithLabelValues(req.ReminderType).Inc()
		result.Sent = append(result.Sent, id)
	}

	log.Printf("[Ledger] reminders (%s): %d sent, %d failed",
		req.ReminderType, len(result.Sent), len(result.Failed))
	return result, nil
}

func reminderMessage(reminderType string, t *models.ReminderTarget) string {
	due := timeutil.ToEAT(t.DueDate).Format("02 Jan 2006")
	switch reminderType {
	case models.ReminderOverdue:
		return fmt.Sprintf("Dear %s, your rent of KES %s for %s was due on %s and is now overdue. Kindly settle the balance to avoid late fees.",
			t.TenantName, t.Outstanding.StringFixed(2), t.PropertyName, due)
	case models.ReminderFinal:
		return fmt.Sprintf("FINAL NOTICE: Dear %s, your rent balance of KES %s for %s (due %s) remains unpaid. Please contact the management office immediately.",
			t.TenantName, t.Outstanding.StringFixed(2), t.PropertyName, due)
	default:
		return fmt.Sprintf("Dear %s, this is a reminder that your rent of KES %s for %s is due on %s. Thank you.",
			t.TenantName, t.Outstanding.StringFixed(2), t.PropertyName, due)
	}
}
