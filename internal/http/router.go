package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rental-backend/internal/handlers"
	"rental-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	submissionHandler *handlers.SubmissionHandler,
	recordHandler *handlers.PaymentRecordHandler,
	leaseHandler *handlers.LeaseHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	meAPI := r.PathPrefix("/auth/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Protected API routes - Payment Submissions
	// Static paths before {id} so mux does not swallow them
	submissionsAPI := r.PathPrefix("/api/payment-submissions").Subrouter()
	submissionsAPI.Use(authMiddleware.Authenticate)
	submissionsAPI.HandleFunc("", submissionHandler.List).Methods("GET")
	submissionsAPI.HandleFunc("/stats", submissionHandler.Stats).Methods("GET")
	submissionsAPI.HandleFunc("/bulk-verify", submissionHandler.BulkVerify).Methods("PUT")
	submissionsAPI.HandleFunc("/{id}", submissionHandler.Get).Methods("GET")
	submissionsAPI.HandleFunc("/{id}/verify", submissionHandler.Verify).Methods("PUT")
	submissionsAPI.HandleFunc("/{id}/reject", submissionHandler.Reject).Methods("PUT")
	submissionsAPI.HandleFunc("/{id}/receipt", submissionHandler.Receipt).Methods("GET")

	// Protected API routes - Payment Records (rent ledger)
	recordsAPI := r.PathPrefix("/api/payment-records").Subrouter()
	recordsAPI.Use(authMiddleware.Authenticate)
	recordsAPI.HandleFunc("", recordHandler.List).Methods("GET")
	recordsAPI.HandleFunc("/generate", authMiddleware.RequireRole("admin")(http.HandlerFunc(recordHandler.Generate)).ServeHTTP).Methods("POST")
	recordsAPI.HandleFunc("/update-overdue", authMiddleware.RequireRole("admin")(http.HandlerFunc(recordHandler.UpdateOverdue)).ServeHTTP).Methods("POST")
	recordsAPI.HandleFunc("/send-reminders", recordHandler.SendReminders).Methods("POST")
	recordsAPI.HandleFunc("/{id}", recordHandler.Get).Methods("GET")
	recordsAPI.HandleFunc("/{id}/record-payment", recordHandler.RecordPayment).Methods("POST")

	// Protected API routes - Leases
	leasesAPI := r.PathPrefix("/api/leases").Subrouter()
	leasesAPI.Use(authMiddleware.Authenticate)
	leasesAPI.HandleFunc("", leaseHandler.List).Methods("GET")
	leasesAPI.HandleFunc("/{id}", leaseHandler.Get).Methods("GET")
	leasesAPI.HandleFunc("/{id}/balance", leaseHandler.Balance).Methods("GET")

	// Protected API routes - Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/collection-summary", reportHandler.CollectionSummary).Methods("GET")
	reportsAPI.HandleFunc("/monthly-trend", reportHandler.MonthlyTrend).Methods("GET")
	reportsAPI.HandleFunc("/monthly/pdf", reportHandler.MonthlyReportPDF).Methods("GET")
	reportsAPI.HandleFunc("/monthly/csv", reportHandler.MonthlyReportCSV).Methods("GET")
	reportsAPI.HandleFunc("/archive", reportHandler.ListArchived).Methods("GET")

	// Health and metrics
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}
