package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/basketmc/internal/metrics"
)

// Metrics owns the Prometheus registry served at /metrics. It is a private
// registry so several servers can coexist in one process (tests, benchmarks).
type Metrics struct {
	registry       *prometheus.Registry
	activeRequests prometheus.Gauge
	requestsTotal  *prometheus.CounterVec
	handler        http.Handler
}

// NewMetrics creates a registry carrying the Go runtime and process
// collectors plus the HTTP request metrics of the server itself.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "requests_total",
			Help:      "HTTP requests served, by path and status code.",
		}, []string{"path", "code"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.activeRequests,
		m.requestsTotal,
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// Registry returns the registry unit collectors should be registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncrementActiveRequests increments the in-flight request gauge.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
}

// DecrementActiveRequests decrements the in-flight request gauge.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

// ObserveRequest counts one served request.
func (m *Metrics) ObserveRequest(path string, code int) {
	m.requestsTotal.WithLabelValues(path, strconv.Itoa(code)).Inc()
}

// WritePrometheus writes the registry in the Prometheus exposition format.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
