// Package metrics exposes Prometheus collectors for the HTTP layer and
// the pairing and approval flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the application's collectors on their own registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	PairingOps         *prometheus.CounterVec
	PendingResolutions *prometheus.CounterVec
	PendingProposals   *prometheus.CounterVec
}

// New creates and registers all collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "famlink",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "famlink",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		PairingOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "famlink",
			Name:      "pairing_operations_total",
			Help:      "Pair and unpair operations by outcome.",
		}, []string{"op", "outcome"}),
		PendingResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "famlink",
			Name:      "pending_resolutions_total",
			Help:      "Resolved pending changes by kind and status.",
		}, []string{"kind", "status"}),
		PendingProposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "famlink",
			Name:      "pending_proposals_total",
			Help:      "Created pending changes by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.PairingOps,
		m.PendingResolutions,
		m.PendingProposals,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePairing counts a pairing operation. Safe on a nil receiver.
func (m *Metrics) ObservePairing(op string, err error) {
	if m == nil {
		return
	}
	m.PairingOps.WithLabelValues(op, outcome(err)).Inc()
}

// ObserveResolution counts an approved or rejected change. Safe on a nil receiver.
func (m *Metrics) ObserveResolution(kind, status string) {
	if m == nil {
		return
	}
	m.PendingResolutions.WithLabelValues(kind, status).Inc()
}

// ObserveProposal counts a new pending change. Safe on a nil receiver.
func (m *Metrics) ObserveProposal(kind string) {
	if m == nil {
		return
	}
	m.PendingProposals.WithLabelValues(kind).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
