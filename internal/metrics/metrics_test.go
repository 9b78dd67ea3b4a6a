package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestResourceLabel(t *testing.T) {
	assert.Equal(t, "/payment/payments/", ResourceLabel("/payment/payments/12/"))
	assert.Equal(t, "/payment/payments/", ResourceLabel("/payment/payments/"))
	assert.Equal(t, "/api/token/refresh/", ResourceLabel("/api/token/refresh/"))
}

func TestObserveBackend(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveBackend("DELETE", "/notice/notices/3/", "ok", 10*time.Millisecond)
	m.ObserveBackend("DELETE", "/notice/notices/4/", "ok", 10*time.Millisecond)

	got := testutil.ToFloat64(m.backendRequests.WithLabelValues("DELETE", "/notice/notices/", "ok"))
	assert.Equal(t, 2.0, got)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveBackend("GET", "/x/", "ok", time.Second)
	m.ObserveAttendance(1, 1)
	m.ObserveInvalidation("x")
}
