// Package metrics holds the Prometheus counters of the session layer.
//
// A nil *Metrics is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "secretsession"

// Result label values for negotiations.
const (
	ResultEstablished = "established"
	ResultFailed      = "failed"
	ResultDiscarded   = "discarded"
)

// Metrics groups the counters. Each instance owns its registry.
type Metrics struct {
	Registry       *prometheus.Registry
	Negotiations   *prometheus.CounterVec
	OpenSessions   prometheus.Counter
	Encoded        *prometheus.CounterVec
	DecodeFailures prometheus.Counter
}

// New creates the counters and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Negotiations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiations_total",
			Help:      "Session negotiations by resulting algorithm and outcome.",
		}, []string{"algorithm", "result"}),
		OpenSessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "open_session_calls_total",
			Help:      "OpenSession calls sent to the secret service.",
		}),
		Encoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "secrets_encoded_total",
			Help:      "Secrets encoded for transfer by algorithm.",
		}, []string{"algorithm"}),
		DecodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Received secrets that failed to decode.",
		}),
	}
	m.Registry.MustRegister(m.Negotiations, m.OpenSessions, m.Encoded, m.DecodeFailures)
	return m
}

// Negotiation records the outcome of one negotiation.
func (m *Metrics) Negotiation(algorithm, result string) {
	if m == nil {
		return
	}
	m.Negotiations.WithLabelValues(algorithm, result).Inc()
}

// OpenSession records one remote OpenSession call.
func (m *Metrics) OpenSession() {
	if m == nil {
		return
	}
	m.OpenSessions.Inc()
}

// Encode records one encoded secret.
func (m *Metrics) Encode(algorithm string) {
	if m == nil {
		return
	}
	m.Encoded.WithLabelValues(algorithm).Inc()
}

// DecodeFailure records one failed decode.
func (m *Metrics) DecodeFailure() {
	if m == nil {
		return
	}
	m.DecodeFailures.Inc()
}
