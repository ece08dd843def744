package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveLookup("found")
	m.ObserveLookup("found")
	m.ObserveLookup("not-found")
	m.ObserveView("thank-you")
	m.ObserveResponse("mixed")

	if got := testutil.ToFloat64(m.lookups.WithLabelValues("found")); got != 2 {
		t.Errorf("lookups{found} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.views.WithLabelValues("thank-you")); got != 1 {
		t.Errorf("views{thank-you} = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) != 3 {
		t.Errorf("Gather() returned %d families, want 3", len(families))
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLookup("found")
	m.ObserveView("lookup")
	m.ObserveResponse("all-declined")
}
