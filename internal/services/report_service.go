package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"
)

var hundred = decimal.NewFromInt(100)

// ReportStore aggregates the ledger for the reports endpoints
type ReportStore interface {
	GetCollectionSummary(ctx context.Context, month, year int) (*repositories.CollectionSummary, error)
	GetMonthlyTrend(ctx context.Context, months int) ([]*repositories.MonthlyTrendPoint, error)
}

// ReportingService builds collection reports and payment receipts
type ReportingService struct {
	Store   ReportStore
	Ledger  LedgerStore
	Archive *ArchiveService
}

func NewReportingService(store ReportStore, ledger LedgerStore, archive *ArchiveService) *ReportingService {
	return &ReportingService{Store: store, Ledger: ledger, Archive: archive}
}

func (s *ReportingService) CollectionSummary(ctx context.Context, month, year int) (*repositories.CollectionSummary, error) {
	now := timeutil.Now()
	if month == 0 && year == 0 {
		month, year = int(now.Month()), now.Year()
	}
	if month < 1 || month > 12 {
		return nil, apperrors.Validation(fmt.Sprintf("month must be between 1 and 12, got %d", month))
	}
	return s.Store.GetCollectionSummary(ctx, month, year)
}

func (s *ReportingService) MonthlyTrend(ctx context.Context, months int) ([]*repositories.MonthlyTrendPoint, error) {
	if months <= 0 {
		months = 6
	}
	if months > 24 {
		months = 24
	}
	return s.Store.GetMonthlyTrend(ctx, months)
}

// GenerateMonthlyReportPDF renders the collection report for one billing
// month: summary box plus the per-lease ledger table.
func (s *ReportingService) GenerateMonthlyReportPDF(ctx context.Context, month, year int) ([]byte, error) {
	summary, err := s.CollectionSummary(ctx, month, year)
	if err != nil {
		return nil, err
	}
	records, err := s.Ledger.List(ctx, models.RecordFilter{Month: month, Year: year, Limit: 1000})
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "") // Landscape for more columns
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(277, 12, "Rent Collection Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(277, 8, summary.Period.Format("January 2006"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Summary Box
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(277, 8, "Summary", "1", 1, "L", true, 0, "")

	rate := summary.CollectionRate.Mul(hundred)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(69, 8, fmt.Sprintf("Total Due: KES %s", summary.TotalDue.StringFixed(2)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(69, 8, fmt.Sprintf("Collected: KES %s", summary.TotalCollected.StringFixed(2)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(69, 8, fmt.Sprintf("Late Fees: KES %s", summary.TotalLateFees.StringFixed(2)), "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, fmt.Sprintf("Collection Rate: %s%%", rate.StringFixed(1)), "1", 1, "C", false, 0, "")
	pdf.CellFormat(69, 8, fmt.Sprintf("Paid: %d", summary.PaidCount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(69, 8, fmt.Sprintf("Partial: %d", summary.PartialCount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(69, 8, fmt.Sprintf("Pending: %d", summary.PendingCount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(70, 8, fmt.Sprintf("Overdue: %d", summary.OverdueCount), "1", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Ledger Table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(277, 8, "Ledger", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(12, 7, "#", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 7, "Lease", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 7, "Tenant", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 7, "Property", "1", 0, "C", true, 0, "")
	pdf.CellFormat(28, 7, "Due Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Amount Due", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Paid", "1", 0, "C", true, 0, "")
	pdf.CellFormat(32, 7, "Status", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, r := range records {
		if i%2 == 0 {
			pdf.SetFillColor(255, 255, 255)
		} else {
			pdf.SetFillColor(245, 245, 245)
		}

		tenant := r.TenantName
		if len(tenant) > 26 {
			tenant = tenant[:23] + "..."
		}
		property := r.PropertyName
		if len(property) > 26 {
			property = property[:23] + "..."
		}

		pdf.CellFormat(12, 6, fmt.Sprintf("%d", i+1), "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 6, r.LeaseNumber, "1", 0, "C", true, 0, "")
		pdf.CellFormat(55, 6, tenant, "1", 0, "L", true, 0, "")
		pdf.CellFormat(55, 6, property, "1", 0, "L", true, 0, "")
		pdf.CellFormat(28, 6, timeutil.ToEAT(r.DueDate).Format(timeutil.DateLayout), "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 6, r.AmountDue.Add(r.LateFee).StringFixed(2), "1", 0, "R", true, 0, "")
		pdf.CellFormat(30, 6, r.AmountPaid.StringFixed(2), "1", 0, "R", true, 0, "")
		pdf.CellFormat(32, 6, string(r.PaymentStatus), "1", 1, "C", true, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateMonthlyReportCSV builds the same report as CSV for spreadsheets
func (s *ReportingService) GenerateMonthlyReportCSV(ctx context.Context, month, year int) ([]byte, error) {
	summary, err := s.CollectionSummary(ctx, month, year)
	if err != nil {
		return nil, err
	}
	records, err := s.Ledger.List(ctx, models.RecordFilter{Month: month, Year: year, Limit: 1000})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Rent Collection Report", summary.Period.Format("January 2006")})
	w.Write([]string{""})
	w.Write([]string{"Total Due", summary.TotalDue.StringFixed(2)})
	w.Write([]string{"Total Collected", summary.TotalCollected.StringFixed(2)})
	w.Write([]string{"Late Fees", summary.TotalLateFees.StringFixed(2)})
	w.Write([]string{"Collection Rate", summary.CollectionRate.Mul(hundred).StringFixed(1) + "%"})
	w.Write([]string{""})

	w.Write([]string{"#", "Lease", "Tenant", "Property", "Due Date", "Amount Due", "Late Fee", "Paid", "Outstanding", "Status"})
	for i, r := range records {
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			r.LeaseNumber,
			r.TenantName,
			r.PropertyName,
			timeutil.ToEAT(r.DueDate).Format(timeutil.DateLayout),
			r.AmountDue.StringFixed(2),
			r.LateFee.StringFixed(2),
			r.AmountPaid.StringFixed(2),
			r.Outstanding().StringFixed(2),
			string(r.PaymentStatus),
		})
	}

	w.Flush()
	return buf.Bytes(), nil
}

// ArchiveMonthlyReport renders the month's report and pushes both formats to
// object storage. Used by the scheduler after the monthly generation run.
func (s *ReportingService) ArchiveMonthlyReport(ctx context.Context, month, year int) error {
	if s.Archive == nil || !s.Archive.Enabled() {
		return nil
	}

	pdfData, err := s.GenerateMonthlyReportPDF(ctx, month, year)
	if err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	csvData, err := s.GenerateMonthlyReportCSV(ctx, month, year)
	if err != nil {
		return fmt.Errorf("render report csv: %w", err)
	}

	prefix := fmt.Sprintf("reports/%d/%02d/collection-report", year, month)
	if err := s.Archive.Upload(ctx, prefix+".pdf", "application/pdf", pdfData); err != nil {
		return err
	}
	if err := s.Archive.Upload(ctx, prefix+".csv", "text/csv", csvData); err != nil {
		return err
	}

	log.Printf("[Report] archived collection report for %d-%02d", year, month)
	return nil
}

// GenerateReceiptPDF renders a payment receipt for a verified submission.
// Pending and rejected submissions have no receipt.
func (s *ReportingService) GenerateReceiptPDF(sub *models.PaymentSubmission) ([]byte, error) {
	if sub.VerificationStatus != models.VerificationVerified {
		return nil, apperrors.InvalidState(fmt.Sprintf("no receipt for %s submission %d", sub.VerificationStatus, sub.ID))
	}

	amount := sub.Amount
	if sub.VerifiedAmount != nil {
		amount = *sub.VerifiedAmount
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Receipt No: PS-%06d", sub.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format(timeutil.DisplayLayout)), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Tenant", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", sub.TenantName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Phone: %s", sub.TenantPhone), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Property: %s", sub.PropertyName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Lease: %s", sub.LeaseNumber), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Payment Details", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Method: %s", sub.PaymentMethod), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Reference: %s", sub.TransactionReference), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Transaction Date: %s", timeutil.ToEAT(sub.TransactionDate).Format(timeutil.DateLayout)), "LB", 0, "L", false, 0, "")
	verified := ""
	if sub.VerifiedDate != nil {
		verified = timeutil.ToEAT(*sub.VerifiedDate).Format(timeutil.DateLayout)
	}
	pdf.CellFormat(95, 7, fmt.Sprintf("Verified: %s", verified), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(200, 255, 200)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Amount Verified: KES %s", amount.StringFixed(2)), "1", 1, "C", true, 0, "")

	if sub.VerifiedByName != "" {
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(190, 6, fmt.Sprintf("Verified by: %s", sub.VerifiedByName), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
