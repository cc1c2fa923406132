// Package observability exposes Prometheus metrics for the gateway pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeStreams   prometheus.Gauge
}

// NewMetrics registers the gateway collectors on the given registerer.
// Passing prometheus.DefaultRegisterer wires them to the default /metrics
// handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "modelgate_requests_total",
			Help: "Relayed chat-completion requests by group, target platform and status code.",
		}, []string{"group", "platform", "code"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "modelgate_request_duration_seconds",
			Help:    "End-to-end request handling duration by group and target platform.",
			Buckets: prometheus.DefBuckets,
		}, []string{"group", "platform"}),
		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Name: "modelgate_active_streams",
			Help: "Currently open SSE relays.",
		}),
	}
}

// ObserveRequest records one completed request.
func (m *Metrics) ObserveRequest(group, platform, code string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(group, platform, code).Inc()
	m.requestDuration.WithLabelValues(group, platform).Observe(duration.Seconds())
}

// StreamStarted marks an SSE relay as open. The returned func marks it closed.
func (m *Metrics) StreamStarted() func() {
	if m == nil {
		return func() {}
	}
	m.activeStreams.Inc()
	return m.activeStreams.Dec
}
