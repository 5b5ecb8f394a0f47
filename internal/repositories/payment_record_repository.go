package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
	"rental-backend/internal/timeutil"
)

// Advisory lock keys for the batch jobs. Both jobs scan-and-write broad row
// sets, so only one writer of each kind may run at a time.
const (
	lockKeyGeneratePayments = 730001
	lockKeyMarkOverdue      = 730002
)

type PaymentRecordRepository struct {
	DB *pgxpool.Pool
}

func NewPaymentRecordRepository(db *pgxpool.Pool) *PaymentRecordRepository {
	return &PaymentRecordRepository{DB: db}
}

const recordColumns = `
	r.id, r.lease_id, l.lease_number, l.primary_tenant_name, COALESCE(l.property_name, ''),
	r.period, r.due_date, r.amount_due, r.amount_paid, r.late_fee, r.payment_status,
	COALESCE(r.payment_method, ''), COALESCE(r.payment_reference, ''), r.payment_date,
	COALESCE(r.notes, ''), r.processed_by, r.created_at, r.updated_at`

const recordJoins = `
	FROM payment_records r
	JOIN leases l ON l.id = r.lease_id`

func scanRecord(row pgx.Row) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := row.Scan(
		&rec.ID, &rec.LeaseID, &rec.LeaseNumber, &rec.TenantName, &rec.PropertyName,
		&rec.Period, &rec.DueDate, &rec.AmountDue, &rec.AmountPaid, &rec.LateFee,
		&rec.PaymentStatus, &rec.PaymentMethod, &rec.PaymentReference, &rec.PaymentDate,
		&rec.Notes, &rec.ProcessedBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("payment record not found")
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PaymentRecordRepository) Get(ctx context.Context, id int) (*models.PaymentRecord, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+recordColumns+recordJoins+` WHERE r.id=$1`, id)
	return scanRecord(row)
}

// List returns ledger rows matching the dashboard filters, due-date ascending
func (r *PaymentRecordRepository) List(ctx context.Context, filter models.RecordFilter) ([]*models.PaymentRecord, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.LeaseID > 0 {
		conditions = append(conditions, fmt.Sprintf("r.lease_id = $%d", argNum))
		args = append(args, filter.LeaseID)
		argNum++
	}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.payment_status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}

	if filter.Year > 0 && filter.Month > 0 {
		conditions = append(conditions, fmt.Sprintf("r.period = $%d", argNum))
		args = append(args, time.Date(filter.Year, time.Month(filter.Month), 1, 0, 0, 0, 0, timeutil.EAT))
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY r.due_date ASC, r.id ASC LIMIT $%d OFFSET $%d`,
		recordColumns, recordJoins, whereClause, argNum, argNum+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.PaymentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GenerateMonthly creates one pending record per active lease for the given
// period. The UNIQUE(lease_id, period) constraint plus ON CONFLICT DO NOTHING
// makes re-runs no-ops; the advisory lock keeps a second generator out while
// one is writing.
func (r *PaymentRecordRepository) GenerateMonthly(ctx context.Context, month, year int) ([]*models.PaymentRecord, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var locked bool
	if err := tx.QueryRow(ctx,
		`SELECT pg_try_advisory_xact_lock($1)`, lockKeyGeneratePayments).Scan(&locked); err != nil {
		return nil, err
	}
	if !locked {
		return nil, apperrors.InvalidState("payment generation already running")
	}

	period := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, timeutil.EAT)

	// Due day clamps to the last day of short months
	rows, err := tx.Query(ctx, `
		INSERT INTO payment_records (lease_id, period, due_date, amount_due, payment_status)
		SELECT l.id, $1::date,
		       make_date($2, $3, LEAST(GREATEST(l.rent_due_day, 1),
		           EXTRACT(DAY FROM ($1::date + INTERVAL '1 month - 1 day'))::int)),
		       l.monthly_rent, 'pending'
		FROM leases l
		WHERE l.status = 'active'
		ON CONFLICT (lease_id, period) DO NOTHING
		RETURNING id
	`, period, year, month)
	if err != nil {
		return nil, err
	}

	var createdIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		createdIDs = append(createdIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	var created []*models.PaymentRecord
	for _, id := range createdIDs {
		rec, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		created = append(created, rec)
	}
	return created, nil
}

// MarkOverdue flips pending/partial records past their due date (plus the
// lease's grace period) to overdue. Idempotent: rows already overdue no
// longer match the status filter.
func (r *PaymentRecordRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var locked bool
	if err := tx.QueryRow(ctx,
		`SELECT pg_try_advisory_xact_lock($1)`, lockKeyMarkOverdue).Scan(&locked); err != nil {
		return 0, err
	}
	if !locked {
		return 0, apperrors.InvalidState("overdue sweep already running")
	}

	tag, err := tx.Exec(ctx, `
		UPDATE payment_records r
		SET payment_status = 'overdue', updated_at = NOW()
		FROM leases l
		WHERE l.id = r.lease_id
		  AND r.payment_status IN ('pending', 'partial')
		  AND r.due_date + make_interval(days => COALESCE(l.grace_period_days, 0)) < $1
	`, asOf)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// RecordPayment applies a manual payment against one specific ledger row.
// The row is locked; payment past the outstanding balance is rejected here
// instead of silently becoming credit (the explicit overpayment path is the
// verified-submission flow).
func (r *PaymentRecordRepository) RecordPayment(ctx context.Context, recordID int, req models.RecordPaymentRequest, actorID int) (*models.PaymentRecord, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var rec models.PaymentRecord
	err = tx.QueryRow(ctx, `
		SELECT id, lease_id, amount_due, amount_paid, late_fee, payment_status
		FROM payment_records WHERE id=$1 FOR UPDATE
	`, recordID).Scan(&rec.ID, &rec.LeaseID, &rec.AmountDue, &rec.AmountPaid, &rec.LateFee, &rec.PaymentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(fmt.Sprintf("payment record %d not found", recordID))
	}
	if err != nil {
		return nil, err
	}

	outstanding := rec.Outstanding()
	if req.Amount.GreaterThan(outstanding) {
		return nil, apperrors.Validation(
			fmt.Sprintf("amount %s exceeds outstanding balance %s", req.Amount, outstanding))
	}

	newPaid := rec.AmountPaid.Add(req.Amount)
	status := models.PaymentPartial
	if newPaid.GreaterThanOrEqual(rec.AmountDue.Add(rec.LateFee)) {
		status = models.PaymentPaid
	}

	now := timeutil.Now()
	_, err = tx.Exec(ctx, `
		UPDATE payment_records
		SET amount_paid=$1, payment_status=$2, payment_method=$3,
		    payment_reference=$4, payment_date=$5, notes=$6, processed_by=$7, updated_at=$5
		WHERE id=$8
	`, newPaid, status, req.PaymentMethod, req.PaymentReference, now, req.Notes, actorID, recordID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.Get(ctx, recordID)
}

// ReminderTargets resolves ledger rows still owing into reminder payloads
func (r *PaymentRecordRepository) ReminderTargets(ctx context.Context, paymentIDs []int) ([]*models.ReminderTarget, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT r.id, r.lease_id, l.tenant_id, l.primary_tenant_name,
		       COALESCE(l.tenant_phone, ''), COALESCE(l.property_name, ''),
		       r.due_date, r.amount_due + r.late_fee - r.amount_paid
		FROM payment_records r
		JOIN leases l ON l.id = r.lease_id
		WHERE r.id = ANY($1) AND r.payment_status IN ('pending', 'partial', 'overdue')
		ORDER BY r.id
	`, paymentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []*models.ReminderTarget
	for rows.Next() {
		var t models.ReminderTarget
		if err := rows.Scan(&t.PaymentID, &t.LeaseID, &t.TenantID, &t.TenantName,
			&t.TenantPhone, &t.PropertyName, &t.DueDate, &t.Outstanding); err != nil {
			return nil, err
		}
		targets = append(targets, &t)
	}
	return targets, rows.Err()
}

// LogReminder records one reminder send for audit
func (r *PaymentRecordRepository) LogReminder(ctx context.Context, paymentRecordID int, reminderType string, sentBy int) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO reminder_logs(payment_record_id, reminder_type, sent_by)
		VALUES($1, $2, $3)
	`, paymentRecordID, reminderType, sentBy)
	return err
}
