package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
)

type PaymentRecordHandler struct {
	Service *services.LedgerService
}

func NewPaymentRecordHandler(service *services.LedgerService) *PaymentRecordHandler {
	return &PaymentRecordHandler{Service: service}
}

// List handles GET /api/payment-records
func (h *PaymentRecordHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.RecordFilter{
		Status: r.URL.Query().Get("status"),
	}
	if leaseID, err := strconv.Atoi(r.URL.Query().Get("lease_id")); err == nil && leaseID > 0 {
		filter.LeaseID = leaseID
	}
	if month, err := strconv.Atoi(r.URL.Query().Get("month")); err == nil && month >= 1 && month <= 12 {
		filter.Month = month
	}
	if year, err := strconv.Atoi(r.URL.Query().Get("year")); err == nil && year > 0 {
		filter.Year = year
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 0 {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}

	records, err := h.Service.ListRecords(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Get handles GET /api/payment-records/{id}
func (h *PaymentRecordHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid payment record ID", http.StatusBadRequest)
		return
	}

	record, err := h.Service.GetRecord(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Generate handles POST /api/payment-records/generate
func (h *PaymentRecordHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req models.GeneratePaymentsRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	result, err := h.Service.GenerateMonthlyPayments(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// UpdateOverdue handles POST /api/payment-records/update-overdue
func (h *PaymentRecordHandler) UpdateOverdue(w http.ResponseWriter, r *http.Request) {
	marked, err := h.Service.UpdateOverdueStatuses(r.Context(), timeutil.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"marked_overdue": marked})
}

// RecordPayment handles PUT /api/payment-records/{id}/record-payment
func (h *PaymentRecordHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid payment record ID", http.StatusBadRequest)
		return
	}

	var req models.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	record, err := h.Service.RecordPayment(r.Context(), id, req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// SendReminders handles POST /api/payment-records/send-reminders
func (h *PaymentRecordHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	var req models.SendRemindersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	result, err := h.Service.SendReminders(r.Context(), req, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
