package httprpc

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// serverMetrics instruments dispatch outcomes. A nil receiver is a no-op so
// the dispatcher never has to branch on whether metrics are enabled.
type serverMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newServerMetrics(r prometheus.Registerer) *serverMetrics {
	m := &serverMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "httprpc_requests_total",
			Help: "RPC dispatches by wire method name and HTTP status code.",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "httprpc_request_duration_seconds",
			Help:    "RPC dispatch duration by wire method name.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	r.MustRegister(m.requests, m.duration)

	return m
}

func (m *serverMetrics) observe(method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "(none)"
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}
