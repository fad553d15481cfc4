// Package metrics exposes engine counters over Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus instruments. A nil *Metrics is
// valid and records nothing, so the engine can run without observability.
type Metrics struct {
	registry *prometheus.Registry

	polls         *prometheus.CounterVec
	pollErrors    *prometheus.CounterVec
	dispatches    *prometheus.CounterVec
	handlerErrors *prometheus.CounterVec
	sent          prometheus.Counter
	suppressed    prometheus.Counter
	snapshotRows  *prometheus.GaugeVec
}

// New creates and registers the engine instruments on reg. Pass nil to
// use a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_polls_total",
			Help: "Completed poll cycles per subscription.",
		}, []string{"subscription"}),
		pollErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_poll_errors_total",
			Help: "Query execution failures per subscription.",
		}, []string{"subscription"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_dispatches_total",
			Help: "Handler invocations per subscription.",
		}, []string{"subscription"}),
		handlerErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vigil_handler_errors_total",
			Help: "Handler failures per subscription.",
		}, []string{"subscription"}),
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_notifications_sent_total",
			Help: "Notifications accepted by the rate limiter and pushed.",
		}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vigil_notifications_suppressed_total",
			Help: "Notifications denied by the rate limiter.",
		}),
		snapshotRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vigil_snapshot_rows",
			Help: "Rows in the most recent snapshot per subscription.",
		}, []string{"subscription"}),
	}

	reg.MustRegister(m.polls, m.pollErrors, m.dispatches, m.handlerErrors,
		m.sent, m.suppressed, m.snapshotRows)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncPoll(subscription string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(subscription).Inc()
}

func (m *Metrics) IncPollError(subscription string) {
	if m == nil {
		return
	}
	m.pollErrors.WithLabelValues(subscription).Inc()
}

func (m *Metrics) IncDispatch(subscription string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(subscription).Inc()
}

func (m *Metrics) IncHandlerError(subscription string) {
	if m == nil {
		return
	}
	m.handlerErrors.WithLabelValues(subscription).Inc()
}

func (m *Metrics) IncSent() {
	if m == nil {
		return
	}
	m.sent.Inc()
}

func (m *Metrics) IncSuppressed() {
	if m == nil {
		return
	}
	m.suppressed.Inc()
}

func (m *Metrics) SetSnapshotRows(subscription string, n int) {
	if m == nil {
		return
	}
	m.snapshotRows.WithLabelValues(subscription).Set(float64(n))
}
