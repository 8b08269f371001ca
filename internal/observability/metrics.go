package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "helpdesk"

// Metrics groups the prometheus collectors the service reports.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	events          *prometheus.CounterVec
	gates           *prometheus.CounterVec
	storeOps        *prometheus.CounterVec
	domainEvents    *prometheus.CounterVec
}

// NewMetrics registers all collectors with reg. A nil reg uses a private
// registry so tests can build many instances.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP error responses, by route, method and error code.",
		}, []string{"path", "method", "code"}),
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversation_events_total",
			Help:      "Inbound conversation events, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		gates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "policy_gate_blocks_total",
			Help:      "Events stopped by an access gate, by gate.",
		}, []string{"gate"}),
		storeOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_transactions_total",
			Help:      "Store mutations, by operation and result.",
		}, []string{"op", "result"}),
		domainEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events published, by type.",
		}, []string{"type"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// RecordEvent counts a handled conversation event. outcome is "ok" or an error kind.
func (m *Metrics) RecordEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind, outcome).Inc()
}

// RecordGate counts an event blocked by gate.
func (m *Metrics) RecordGate(gate string) {
	if m == nil {
		return
	}
	m.gates.WithLabelValues(gate).Inc()
}

// RecordStoreOp counts a store transaction.
func (m *Metrics) RecordStoreOp(op, result string) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(op, result).Inc()
}

// RecordDomainEvent counts a published domain event.
func (m *Metrics) RecordDomainEvent(eventType string) {
	if m == nil {
		return
	}
	m.domainEvents.WithLabelValues(eventType).Inc()
}
