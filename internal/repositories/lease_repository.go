package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
)

type LeaseRepository struct {
	DB *pgxpool.Pool
}

func NewLeaseRepository(db *pgxpool.Pool) *LeaseRepository {
	return &LeaseRepository{DB: db}
}

const leaseColumns = `id, lease_number, property_id, unit_id, tenant_id, primary_tenant_name,
	COALESCE(tenant_phone, ''), COALESCE(property_name, ''), COALESCE(unit_label, ''),
	monthly_rent, rent_due_day, grace_period_days, status, start_date, end_date, created_at, updated_at`

func scanLease(row pgx.Row) (*models.Lease, error) {
	var l models.Lease
	err := row.Scan(&l.ID, &l.LeaseNumber, &l.PropertyID, &l.UnitID, &l.TenantID,
		&l.PrimaryTenantName, &l.TenantPhone, &l.PropertyName, &l.UnitLabel,
		&l.MonthlyRent, &l.RentDueDay, &l.GracePeriodDays, &l.Status,
		&l.StartDate, &l.EndDate, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("lease not found")
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeaseRepository) Get(ctx context.Context, id int) (*models.Lease, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+leaseColumns+` FROM leases WHERE id=$1`, id)
	return scanLease(row)
}

// List returns leases, optionally narrowed to one status
func (r *LeaseRepository) List(ctx context.Context, status string) ([]*models.Lease, error) {
	query := `SELECT ` + leaseColumns + ` FROM leases`
	var args []interface{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY lease_number`

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leases []*models.Lease
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	return leases, rows.Err()
}

// Balance aggregates the lease's ledger position: dues, collections,
// outstanding and accumulated overpayment credit.
func (r *LeaseRepository) Balance(ctx context.Context, leaseID int) (*models.LeaseBalance, error) {
	// Make sure the lease exists before aggregating
	if _, err := r.Get(ctx, leaseID); err != nil {
		return nil, err
	}

	b := &models.LeaseBalance{LeaseID: leaseID}
	err := r.DB.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_due + late_fee), 0),
			COALESCE(SUM(amount_paid), 0),
			COALESCE(SUM(amount_due + late_fee - amount_paid), 0),
			COUNT(*) FILTER (WHERE payment_status = 'overdue')
		FROM payment_records
		WHERE lease_id = $1
	`, leaseID).Scan(&b.TotalDue, &b.TotalPaid, &b.Outstanding, &b.OverdueCount)
	if err != nil {
		return nil, err
	}

	err = r.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM tenant_credits WHERE lease_id = $1`,
		leaseID).Scan(&b.CreditBalance)
	if err != nil {
		return nil, err
	}

	if b.Outstanding.LessThan(decimal.Zero) {
		b.Outstanding = decimal.Zero
	}
	return b, nil
}
