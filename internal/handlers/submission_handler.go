package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
)

type SubmissionHandler struct {
	Service   *services.VerificationService
	Reporting *services.ReportingService
}

func NewSubmissionHandler(service *services.VerificationService, reporting *services.ReportingService) *SubmissionHandler {
	return &SubmissionHandler{Service: service, Reporting: reporting}
}

// List handles GET /api/payment-submissions
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.SubmissionFilter{
		Status:        r.URL.Query().Get("status"),
		Search:        r.URL.Query().Get("search"),
		PaymentMethod: r.URL.Query().Get("payment_method"),
	}

	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if from := r.URL.Query().Get("date_from"); from != "" {
		t, err := timeutil.ParseInEAT(timeutil.DateLayout, from)
		if err != nil {
			http.Error(w, "Invalid date_from, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.DateFrom = &t
	}
	if to := r.URL.Query().Get("date_to"); to != "" {
		t, err := timeutil.ParseInEAT(timeutil.DateLayout, to)
		if err != nil {
			http.Error(w, "Invalid date_to, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end := timeutil.EndOfDay(t)
		filter.DateTo = &end
	}

	list, err := h.Service.ListSubmissions(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Get handles GET /api/payment-submissions/{id}
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	sub, err := h.Service.GetSubmission(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Stats handles GET /api/payment-submissions/stats
func (h *SubmissionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Verify handles PUT /api/payment-submissions/{id}/verify
func (h *SubmissionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	var req models.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	sub, err := h.Service.Verify(r.Context(), id, req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Reject handles PUT /api/payment-submissions/{id}/reject
func (h *SubmissionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	var req models.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	sub, err := h.Service.Reject(r.Context(), id, req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// BulkVerify handles PUT /api/payment-submissions/bulk-verify
func (h *SubmissionHandler) BulkVerify(w http.ResponseWriter, r *http.Request) {
	var req models.BulkVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	result, err := h.Service.BulkVerify(r.Context(), req, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	// Partial failure is still a 200; the body carries per-item outcomes
	writeJSON(w, http.StatusOK, result)
}

// Receipt handles GET /api/payment-submissions/{id}/receipt
func (h *SubmissionHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid submission ID", http.StatusBadRequest)
		return
	}

	sub, err := h.Service.GetSubmission(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	pdfData, err := h.Reporting.GenerateReceiptPDF(sub)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt_PS-%06d.pdf", sub.ID))
	w.Write(pdfData)
}
