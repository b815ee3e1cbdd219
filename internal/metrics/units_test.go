package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	byName := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		byName[f.GetName()] = f
	}
	return byName
}

func TestCollectors_RecordUnits(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	c, err := NewCollectors(reg)
	if err != nil {
		t.Fatalf("NewCollectors: %v", err)
	}

	c.UnitStarted()
	c.UnitStarted()
	c.UnitFinished("Worker", StatusOk, 20*time.Millisecond)
	c.UnitSkipped("Joiner")
	c.AddPaths(1000)
	c.AddPaths(-5)

	families := gather(t, reg)

	if got := families["basketmc_active_units"].GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Errorf("active_units = %v, want 1", got)
	}
	if got := families["basketmc_paths_simulated_total"].GetMetric()[0].GetCounter().GetValue(); got != 1000 {
		t.Errorf("paths_simulated_total = %v, want 1000", got)
	}
	units := families["basketmc_units_total"]
	if units == nil || len(units.GetMetric()) != 2 {
		t.Fatalf("units_total should have two label sets, got %v", units)
	}
	hist := families["basketmc_unit_duration_seconds"].GetMetric()[0].GetHistogram()
	if hist.GetSampleCount() != 1 {
		t.Errorf("duration samples = %d, want 1", hist.GetSampleCount())
	}
}

func TestCollectors_DuplicateRegistration(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	if _, err := NewCollectors(reg); err != nil {
		t.Fatalf("first NewCollectors: %v", err)
	}
	if _, err := NewCollectors(reg); err == nil {
		t.Error("registering twice on one registry should fail")
	}
}

func TestCollectors_NilIsNoop(t *testing.T) {
	t.Parallel()
	var c *Collectors
	c.UnitStarted()
	c.UnitFinished("Launch", StatusError, time.Second)
	c.UnitSkipped("Joiner")
	c.AddPaths(10)
}
