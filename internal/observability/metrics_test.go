package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordRequest("/v1/events", "POST", 202, 5*time.Millisecond)
	m.RecordRequest("/v1/events", "POST", 202, 5*time.Millisecond)
	m.RecordGate("banned")
	m.RecordStoreOp("CreateLine", "ok")

	if got := testutil.ToFloat64(m.requests.WithLabelValues("/v1/events", "POST", "202")); got != 2 {
		t.Fatalf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.gates.WithLabelValues("banned")); got != 1 {
		t.Fatalf("gates = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("CreateLine", "ok")); got != 1 {
		t.Fatalf("store ops = %v, want 1", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordEvent("text", "ok")
	m.RecordGate("mute")
	m.RecordStoreOp("op", "ok")
	m.RecordDomainEvent("user.created")
}
