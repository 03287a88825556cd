package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_created_total",
			Help: "Total number of leads created",
		},
	)

	leadNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_notifications_total",
			Help: "Lead notifications by outcome (durable, live, failed)",
		},
		[]string{"outcome"},
	)

	leadAcceptances = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_acceptances_total",
			Help: "Lead acceptance attempts by outcome",
		},
		[]string{"outcome"},
	)

	sweepUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_updates_total",
			Help: "Rows changed by background sweeps",
		},
		[]string{"sweep"},
	)

	customerNotices = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "customer_notices_total",
			Help: "Customer notices handled by the queue worker",
		},
		[]string{"outcome"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming responses working behind the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

func RecordLeadCreated(notified, live, failed int) {
	leadsCreated.Inc()
	leadNotifications.WithLabelValues("durable").Add(float64(notified))
	leadNotifications.WithLabelValues("live").Add(float64(live))
	leadNotifications.WithLabelValues("failed").Add(float64(failed))
}

func RecordAcceptance(outcome string) {
	leadAcceptances.WithLabelValues(outcome).Inc()
}

func RecordSweep(sweep string, n int) {
	sweepUpdates.WithLabelValues(sweep).Add(float64(n))
}

func RecordCustomerNotice(outcome string) {
	customerNotices.WithLabelValues(outcome).Inc()
}
