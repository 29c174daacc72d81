package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request counter
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Tickets issued counter
	TicketsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total number of tickets issued",
		},
	)

	// Issuance failure counter by reason
	IssuanceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_issuance_failures_total",
			Help: "Total number of failed issuance attempts",
		},
		[]string{"reason"},
	)

	// Redemption outcomes counter
	RedemptionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_redemptions_total",
			Help: "Total number of redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	// Transfer counter by result
	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transfers_total",
			Help: "Total number of ticket transfer attempts",
		},
		[]string{"status"},
	)

	// Compensation counters
	CompensationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compensation_refund_attempts_total",
			Help: "Total number of compensating refund attempts",
		},
		[]string{"reason"},
	)

	CompensationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compensation_refund_failures_total",
			Help: "Total number of compensating refunds that could not be issued",
		},
	)
)

// Middleware records request counts and latency per route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		RequestsTotal.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
