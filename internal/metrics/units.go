package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric exported by basketmc.
const Namespace = "basketmc"

// Unit outcome labels.
const (
	StatusOk      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Collectors holds the Prometheus collectors updated by the task platform.
// A nil *Collectors is valid and records nothing.
type Collectors struct {
	UnitsTotal     *prometheus.CounterVec
	UnitDuration   *prometheus.HistogramVec
	ActiveUnits    prometheus.Gauge
	PathsSimulated prometheus.Counter
}

// NewCollectors creates the collectors and registers them with reg.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		UnitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "units_total",
			Help:      "Units of work that reached a terminal state, by use case and status.",
		}, []string{"use_case", "status"}),
		UnitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "unit_duration_seconds",
			Help:      "Wall-clock execution time of a unit of work.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"use_case"}),
		ActiveUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "active_units",
			Help:      "Units of work currently executing.",
		}),
		PathsSimulated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "paths_simulated_total",
			Help:      "Monte Carlo paths covered by completed simulations.",
		}),
	}
	for _, col := range []prometheus.Collector{c.UnitsTotal, c.UnitDuration, c.ActiveUnits, c.PathsSimulated} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// UnitStarted marks one more unit as running.
func (c *Collectors) UnitStarted() {
	if c == nil {
		return
	}
	c.ActiveUnits.Inc()
}

// UnitFinished records a terminal state for a unit that ran for d.
func (c *Collectors) UnitFinished(useCase, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.ActiveUnits.Dec()
	c.UnitsTotal.WithLabelValues(useCase, status).Inc()
	c.UnitDuration.WithLabelValues(useCase).Observe(d.Seconds())
}

// UnitSkipped records a unit that never ran because a dependency failed.
func (c *Collectors) UnitSkipped(useCase string) {
	if c == nil {
		return
	}
	c.UnitsTotal.WithLabelValues(useCase, StatusSkipped).Inc()
}

// AddPaths counts simulated paths.
func (c *Collectors) AddPaths(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.PathsSimulated.Add(float64(n))
}
