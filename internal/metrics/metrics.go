package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Submission transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	LedgerAppliedAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_applied_amount_total",
			Help: "Sum of verified amounts applied to the rent ledger",
		},
	)

	OverdueRecordsMarked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "overdue_records_marked_total",
			Help: "Payment records flipped to overdue by the batch sweep",
		},
	)

	RemindersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_reminders_sent_total",
			Help: "Rent reminders handed to the SMS gateway by type",
		},
		[]string{"reminder_type"},
	)
)
