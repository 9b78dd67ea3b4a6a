package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the console's Prometheus collectors.
type Metrics struct {
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	attendanceRows  *prometheus.CounterVec
	invalidations   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "backend_requests_total",
			Help:      "Requests sent to the institute backend.",
		}, []string{"method", "resource", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "console",
			Name:      "backend_request_duration_seconds",
			Help:      "Latency of institute backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
		attendanceRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "attendance_rows_submitted_total",
			Help:      "Attendance rows submitted, by outcome.",
		}, []string{"outcome"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "console",
			Name:      "invalidations_published_total",
			Help:      "Collection invalidations published after mutations.",
		}, []string{"resource"}),
	}
	reg.MustRegister(m.backendRequests, m.backendLatency, m.attendanceRows, m.invalidations)
	return m
}

// ObserveBackend records one backend round trip. outcome is "ok", "http_error" or "transport_error".
func (m *Metrics) ObserveBackend(method, path, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	resource := ResourceLabel(path)
	m.backendRequests.WithLabelValues(method, resource, outcome).Inc()
	m.backendLatency.WithLabelValues(method, resource).Observe(took.Seconds())
}

// ObserveAttendance counts submitted attendance rows.
func (m *Metrics) ObserveAttendance(succeeded, failed int) {
	if m == nil {
		return
	}
	m.attendanceRows.WithLabelValues("succeeded").Add(float64(succeeded))
	m.attendanceRows.WithLabelValues("failed").Add(float64(failed))
}

// ObserveInvalidation counts a published invalidation.
func (m *Metrics) ObserveInvalidation(resource string) {
	if m == nil {
		return
	}
	m.invalidations.WithLabelValues(resource).Inc()
}

// ResourceLabel collapses item paths to their collection so label cardinality
// stays bounded: "/payment/payments/12/" becomes "/payment/payments/".
func ResourceLabel(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return path
	}
	last := trimmed[idx+1:]
	if last == "" || strings.Trim(last, "0123456789") != "" {
		return path
	}
	return trimmed[:idx+1]
}
