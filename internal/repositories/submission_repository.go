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

type SubmissionRepository struct {
	DB *pgxpool.Pool
}

func NewSubmissionRepository(db *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

const submissionColumns = `
	s.id, s.lease_id, s.tenant_id, s.property_id, s.unit_id,
	l.primary_tenant_name, COALESCE(l.tenant_phone, ''), COALESCE(l.property_name, ''),
	COALESCE(l.unit_label, ''), l.lease_number,
	s.amount, s.payment_method, COALESCE(s.transaction_reference, ''),
	s.transaction_date, s.submission_date, COALESCE(s.tenant_notes, ''),
	s.verification_status, COALESCE(s.admin_notes, ''),
	s.verified_amount, s.verified_date, s.verified_by, COALESCE(u.name, ''),
	s.current_balance, s.applied_at, s.version, s.created_at, s.updated_at`

const submissionJoins = `
	FROM payment_submissions s
	JOIN leases l ON l.id = s.lease_id
	LEFT JOIN users u ON u.id = s.verified_by`

func scanSubmission(row pgx.Row) (*models.PaymentSubmission, error) {
	var s models.PaymentSubmission
	err := row.Scan(
		&s.ID, &s.LeaseID, &s.TenantID, &s.PropertyID, &s.UnitID,
		&s.TenantName, &s.TenantPhone, &s.PropertyName, &s.UnitLabel, &s.LeaseNumber,
		&s.Amount, &s.PaymentMethod, &s.TransactionReference,
		&s.TransactionDate, &s.SubmissionDate, &s.TenantNotes,
		&s.VerificationStatus, &s.AdminNotes,
		&s.VerifiedAmount, &s.VerifiedDate, &s.VerifiedBy, &s.VerifiedByName,
		&s.CurrentBalance, &s.AppliedAt, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("submission not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id int) (*models.PaymentSubmission, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+submissionColumns+submissionJoins+` WHERE s.id=$1`, id)
	return scanSubmission(row)
}

// List returns submissions matching the dashboard filters, newest first,
// with the page envelope the frontend expects.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]*models.PaymentSubmission, *models.Pagination, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.verification_status = $%d", argNum))
		args = append(args, filter.Status)
		argNum++
	}

	if filter.PaymentMethod != "" {
		conditions = append(conditions, fmt.Sprintf("s.payment_method = $%d", argNum))
		args = append(args, filter.PaymentMethod)
		argNum++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(l.primary_tenant_name ILIKE $%d OR l.property_name ILIKE $%d OR l.lease_number ILIKE $%d OR s.transaction_reference ILIKE $%d)",
			argNum, argNum, argNum, argNum))
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("s.submission_date >= $%d", argNum))
		args = append(args, *filter.DateFrom)
		argNum++
	}

	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("s.submission_date <= $%d", argNum))
		args = append(args, *filter.DateTo)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var totalCount int
	countQuery := `SELECT COUNT(*)` + submissionJoins + ` ` + whereClause
	if err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT %s %s %s ORDER BY s.submission_date DESC, s.id DESC LIMIT $%d OFFSET $%d`,
		submissionColumns, submissionJoins, whereClause, argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var submissions []*models.PaymentSubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, nil, err
		}
		submissions = append(submissions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	totalPages := (totalCount + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	return submissions, &models.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  totalCount,
		Limit:       limit,
	}, nil
}

// Stats feeds the dashboard header counters
func (r *SubmissionRepository) Stats(ctx context.Context) (*models.VerificationStats, error) {
	var stats models.VerificationStats
	today := timeutil.StartOfDay(timeutil.Now())

	err := r.DB.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE verification_status = 'pending'),
			COUNT(*) FILTER (WHERE verification_status = 'verified' AND verified_date >= $1),
			COUNT(*) FILTER (WHERE verification_status = 'rejected'),
			COALESCE(SUM(amount) FILTER (WHERE verification_status = 'pending'), 0)
		FROM payment_submissions
	`, today).Scan(&stats.PendingCount, &stats.VerifiedToday, &stats.RejectedCount, &stats.TotalPendingAmount)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Transition applies one verify/reject decision atomically. The submission
// row is locked and its status compare-and-swapped out of pending; on verify
// with apply, the lease's unpaid records are locked oldest-first and the FIFO
// allocation is written in the same transaction, so a ledger failure rolls
// the status change back too. A submission can therefore be applied at most
// once no matter how many concurrent callers retry.
func (r *SubmissionRepository) Transition(ctx context.Context, p models.TransitionParams) (*models.PaymentSubmission, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Lock the submission row
	var status models.VerificationStatus
	var leaseID, tenantID int
	var method, reference string
	err = tx.QueryRow(ctx, `
		SELECT verification_status, lease_id, tenant_id, payment_method, COALESCE(transaction_reference, '')
		FROM payment_submissions WHERE id=$1 FOR UPDATE`,
		p.SubmissionID).Scan(&status, &leaseID, &tenantID, &method, &reference)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound(fmt.Sprintf("submission %d not found", p.SubmissionID))
	}
	if err != nil {
		return nil, err
	}

	if status != models.VerificationPending {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("submission %d already %s", p.SubmissionID, status))
	}

	now := timeutil.Now()
	newStatus := models.VerificationVerified
	if p.Action == models.BulkActionReject {
		newStatus = models.VerificationRejected
	}

	// CAS on status: the WHERE clause re-checks pending even though the row
	// is locked, so a bug elsewhere can never double-transition.
	tag, err := tx.Exec(ctx, `
		UPDATE payment_submissions
		SET verification_status=$1, admin_notes=$2, verified_amount=$3,
		    verified_date=$4, verified_by=$5, version=version+1, updated_at=$4
		WHERE id=$6 AND verification_status='pending'
	`, newStatus, p.AdminNotes, nullableAmount(p), now, p.ActorID, p.SubmissionID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() != 1 {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("submission %d concurrently transitioned", p.SubmissionID))
	}

	if newStatus == models.VerificationVerified && p.ApplyToAccount {
		if err := r.applyToLedger(ctx, tx, p, leaseID, tenantID, method, reference, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return r.Get(ctx, p.SubmissionID)
}

func nullableAmount(p models.TransitionParams) interface{} {
	if p.Action == models.BulkActionReject {
		return nil
	}
	return p.VerifiedAmount
}

// applyToLedger runs inside the transition transaction. Unpaid records are
// locked in due-date order (deterministic, so two reconciliations against the
// same lease cannot deadlock) and updated per the FIFO allocation; any
// remainder is booked as tenant credit.
func (r *SubmissionRepository) applyToLedger(ctx context.Context, tx pgx.Tx, p models.TransitionParams, leaseID, tenantID int, method, reference string, now time.Time) error {
	rows, err := tx.Query(ctx, `
		SELECT id, lease_id, due_date, amount_due, amount_paid, late_fee, payment_status
		FROM payment_records
		WHERE lease_id=$1 AND payment_status IN ('pending', 'partial', 'overdue')
		ORDER BY due_date ASC, id ASC
		FOR UPDATE
	`, leaseID)
	if err != nil {
		return err
	}

	var records []*models.PaymentRecord
	for rows.Next() {
		var rec models.PaymentRecord
		if err := rows.Scan(&rec.ID, &rec.LeaseID, &rec.DueDate,
			&rec.AmountDue, &rec.AmountPaid, &rec.LateFee, &rec.PaymentStatus); err != nil {
			rows.Close()
			return err
		}
		records = append(records, &rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	result := models.AllocateAmount(p.VerifiedAmount, records)

	for _, alloc := range result.Allocations {
		_, err := tx.Exec(ctx, `
			UPDATE payment_records
			SET amount_paid=$1, payment_status=$2, payment_method=$3,
			    payment_reference=$4, payment_date=$5, processed_by=$6, updated_at=$5
			WHERE id=$7
		`, alloc.NewPaid, alloc.NewStatus, method, reference, now, p.ActorID, alloc.RecordID)
		if err != nil {
			return err
		}
	}

	if result.Remainder.IsPositive() {
		_, err := tx.Exec(ctx, `
			INSERT INTO tenant_credits(lease_id, tenant_id, amount, source_submission_id, notes, created_by)
			VALUES($1, $2, $3, $4, $5, $6)
		`, leaseID, tenantID, result.Remainder, p.SubmissionID,
			"overpayment on verified submission", p.ActorID)
		if err != nil {
			return err
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE payment_submissions SET applied_at=$1 WHERE id=$2`, now, p.SubmissionID)
	return err
}
