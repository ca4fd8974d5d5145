// Package metrics exposes Prometheus collectors for scaling sessions and
// the remote Costonomy client.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Recorder owns a private registry so tests and multiple servers do not
// collide on the default one. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	operations     *prometheus.CounterVec
	divisionGuards prometheus.Counter
	remoteRequests *prometheus.CounterVec
	remoteLatency  *prometheus.HistogramVec
	openSessions   prometheus.Gauge
}

// New creates a Recorder with every collector registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scaling_operations_total",
				Help: "Scaling operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		divisionGuards: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "division_guards_total",
			Help: "Lines or references whose zero divisor was replaced by 1",
		}),
		remoteRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "costonomy_requests_total",
				Help: "Requests sent to the Costonomy API",
			},
			[]string{"endpoint", "outcome"},
		),
		remoteLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "costonomy_request_duration_seconds",
				Help:    "Latency of Costonomy API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scaling_sessions_open",
			Help: "Scaling sessions currently stored",
		}),
	}
	r.registry.MustRegister(
		r.operations,
		r.divisionGuards,
		r.remoteRequests,
		r.remoteLatency,
		r.openSessions,
		collectors.NewGoCollector(),
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Operation counts one scaling operation.
func (r *Recorder) Operation(name string, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(name, outcome(err)).Inc()
}

// DivisionGuards counts replaced divisors.
func (r *Recorder) DivisionGuards(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.divisionGuards.Add(float64(n))
}

// RemoteRequest records one Costonomy API call.
func (r *Recorder) RemoteRequest(endpoint string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.remoteRequests.WithLabelValues(endpoint, outcome(err)).Inc()
	r.remoteLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// SessionOpened and SessionClosed track the stored session count.
func (r *Recorder) SessionOpened() {
	if r != nil {
		r.openSessions.Inc()
	}
}

func (r *Recorder) SessionClosed() {
	if r != nil {
		r.openSessions.Dec()
	}
}

// SetOpenSessions replaces the stored session count, e.g. after a restart
// against a persistent store.
func (r *Recorder) SetOpenSessions(n int) {
	if r != nil {
		r.openSessions.Set(float64(n))
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
