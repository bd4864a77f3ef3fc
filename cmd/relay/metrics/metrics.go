// Package metrics provides Prometheus instrumentation for the relay.
//
// Metrics exposed:
//   - fwirelay_upstream_request_seconds: Histogram of upstream round-trip time
//   - fwirelay_upstream_responses_total: Counter of upstream responses by status code
//   - fwirelay_errors_total: Counter of relay failures by reason
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the relay. It implements relay.Recorder.
type Metrics struct {
	UpstreamSeconds   prometheus.Histogram
	UpstreamResponses *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "fwirelay_upstream_request_seconds",
			Help: "Time spent waiting for the prediction service",
			// The hosted upstream sleeps when idle; cold starts take tens of seconds.
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),

		UpstreamResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fwirelay_upstream_responses_total",
			Help: "Upstream responses by HTTP status code",
		}, []string{"code"}),

		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fwirelay_errors_total",
			Help: "Total number of relay failures by reason",
		}, []string{"reason"}),
	}
}

// ObserveUpstream records one completed upstream call.
func (m *Metrics) ObserveUpstream(status int, duration time.Duration) {
	m.UpstreamSeconds.Observe(duration.Seconds())
	m.UpstreamResponses.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(reason string) {
	m.ErrorsTotal.WithLabelValues(reason).Inc()
}
