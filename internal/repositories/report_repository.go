package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rental-backend/internal/timeutil"
)

type ReportRepository struct {
	DB *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{DB: db}
}

// CollectionSummary is the rent position for one billing period
type CollectionSummary struct {
	Period         time.Time       `json:"period"`
	TotalDue       decimal.Decimal `json:"total_due"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	TotalLateFees  decimal.Decimal `json:"total_late_fees"`
	PaidCount      int             `json:"paid_count"`
	PartialCount   int             `json:"partial_count"`
	PendingCount   int             `json:"pending_count"`
	OverdueCount   int             `json:"overdue_count"`
	CollectionRate decimal.Decimal `json:"collection_rate"` // collected / due, 0..1
}

// MonthlyTrendPoint is one month of the collections trend chart
type MonthlyTrendPoint struct {
	Period         time.Time       `json:"period"`
	TotalDue       decimal.Decimal `json:"total_due"`
	TotalCollected decimal.Decimal `json:"total_collected"`
}

// GetCollectionSummary aggregates the ledger for one billing month
func (r *ReportRepository) GetCollectionSummary(ctx context.Context, month, year int) (*CollectionSummary, error) {
	period := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, timeutil.EAT)

	summary := &CollectionSummary{Period: period}
	err := r.DB.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount_due), 0),
			COALESCE(SUM(amount_paid), 0),
			COALESCE(SUM(late_fee), 0),
			COUNT(*) FILTER (WHERE payment_status = 'paid'),
			COUNT(*) FILTER (WHERE payment_status = 'partial'),
			COUNT(*) FILTER (WHERE payment_status = 'pending'),
			COUNT(*) FILTER (WHERE payment_status = 'overdue')
		FROM payment_records
		WHERE period = $1
	`, period).Scan(
		&summary.TotalDue, &summary.TotalCollected, &summary.TotalLateFees,
		&summary.PaidCount, &summary.PartialCount, &summary.PendingCount, &summary.OverdueCount,
	)
	if err != nil {
		return nil, err
	}

	if summary.TotalDue.IsPositive() {
		summary.CollectionRate = summary.TotalCollected.Div(summary.TotalDue).Round(4)
	}
	return summary, nil
}

// GetMonthlyTrend returns per-month dues and collections for the last n months
func (r *ReportRepository) GetMonthlyTrend(ctx context.Context, months int) ([]*MonthlyTrendPoint, error) {
	if months <= 0 {
		months = 12
	}

	rows, err := r.DB.Query(ctx, `
		SELECT period, COALESCE(SUM(amount_due), 0), COALESCE(SUM(amount_paid), 0)
		FROM payment_records
		WHERE period >= date_trunc('month', NOW())::date - make_interval(months => $1 - 1)
		GROUP BY period
		ORDER BY period
	`, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []*MonthlyTrendPoint
	for rows.Next() {
		var p MonthlyTrendPoint
		if err := rows.Scan(&p.Period, &p.TotalDue, &p.TotalCollected); err != nil {
			return nil, err
		}
		trend = append(trend, &p)
	}
	return trend, rows.Err()
}
