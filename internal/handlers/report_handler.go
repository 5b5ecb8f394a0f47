package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
)

type ReportHandler struct {
	Service *services.ReportingService
	Archive *services.ArchiveService
}

func NewReportHandler(service *services.ReportingService, archive *services.ArchiveService) *ReportHandler {
	return &ReportHandler{Service: service, Archive: archive}
}

func (h *ReportHandler) monthYear(r *http.Request) (int, int) {
	now := timeutil.Now()
	month, year := int(now.Month()), now.Year()
	if m, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil {
		month = m
	}
	if y, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil {
		year = y
	}
	return month, year
}

// CollectionSummary handles GET /api/reports/collection-summary
func (h *ReportHandler) CollectionSummary(w http.ResponseWriter, r *http.Request) {
	month, year := h.monthYear(r)
	summary, err := h.Service.CollectionSummary(r.Context(), month, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// MonthlyTrend handles GET /api/reports/monthly-trend
func (h *ReportHandler) MonthlyTrend(w http.ResponseWriter, r *http.Request) {
	months := 6
	if m, err := strconv.Atoi(r.URL.Query().Get("months")); err == nil && m > 0 {
		months = m
	}

	trend, err := h.Service.MonthlyTrend(r.Context(), months)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// MonthlyReportPDF handles GET /api/reports/monthly/pdf
func (h *ReportHandler) MonthlyReportPDF(w http.ResponseWriter, r *http.Request) {
	month, year := h.monthYear(r)
	pdfData, err := h.Service.GenerateMonthlyReportPDF(r.Context(), month, year)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=collection_report_%d-%02d.pdf", year, month))
	w.Write(pdfData)
}

// MonthlyReportCSV handles GET /api/reports/monthly/csv
func (h *ReportHandler) MonthlyReportCSV(w http.ResponseWriter, r *http.Request) {
	month, year := h.monthYear(r)
	csvData, err := h.Service.GenerateMonthlyReportCSV(r.Context(), month, year)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=collection_report_%d-%02d.csv", year, month))
	w.Write(csvData)
}

// ListArchived handles GET /api/reports/archive
func (h *ReportHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	keys, err := h.Archive.List(r.Context(), "reports/")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"reports": keys})
}
