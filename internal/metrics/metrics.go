// Package metrics exposes the proxy's Prometheus instrumentation: session
// counts, identity filtering counts, sign decisions, and upstream latency.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the proxy registers.
type Metrics struct {
	SessionsAccepted *prometheus.CounterVec
	IdentitiesTotal  *prometheus.CounterVec
	SignDecisions    *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
}

// New builds and registers the proxy's metric collectors against the given
// registerer (use prometheus.DefaultRegisterer in production, a fresh
// prometheus.NewRegistry in tests).
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SessionsAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authsock_sessions_accepted_total",
				Help: "Total number of client sessions accepted per endpoint.",
			},
			[]string{"endpoint"},
		),
		IdentitiesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authsock_identities_total",
				Help: "Identity counts observed per request-identities response, before and after filtering.",
			},
			[]string{"endpoint", "stage"}, // stage: original, filtered
		),
		SignDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authsock_sign_decisions_total",
				Help: "Sign-request decisions per endpoint.",
			},
			[]string{"endpoint", "decision"}, // decision: allowed, denied
		),
		UpstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "authsock_upstream_roundtrip_seconds",
				Help:    "Latency of one upstream send/receive round trip.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}
}

// ObserveUpstreamRoundTrip records the duration of one upstream round trip
// for endpoint, measured from start.
func (m *Metrics) ObserveUpstreamRoundTrip(endpoint string, start time.Time) {
	m.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
