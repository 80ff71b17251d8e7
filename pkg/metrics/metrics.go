// Package metrics exposes Prometheus metrics for render cycles, node
// measurement and the HTTP viewer.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all hubspoke metrics. It satisfies both the measurer and
// the renderer observer interfaces.
type Registry struct {
	registry *prometheus.Registry

	// Render metrics
	RenderCyclesTotal prometheus.Counter
	RenderDuration    prometheus.Histogram
	RenderNodes       prometheus.Histogram

	// Measurement metrics
	MeasurementsTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialised.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initRenderMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initRenderMetrics() {
	r.RenderCyclesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "hubspoke_render_cycles_total",
			Help: "Total number of completed render cycles",
		},
	)

	r.RenderDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hubspoke_render_duration_seconds",
			Help:    "Duration of a render cycle from measurement to auto-fit",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	r.RenderNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hubspoke_render_nodes",
			Help:    "Number of nodes drawn per render cycle",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	r.MeasurementsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubspoke_measurements_total",
			Help: "Node measurements by result",
		},
		[]string{"result"}, // measured, cached, fallback
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "hubspoke_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hubspoke_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "hubspoke_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

// ObserveRender records a completed render cycle.
func (r *Registry) ObserveRender(d time.Duration, nodes int) {
	r.RenderCyclesTotal.Inc()
	r.RenderDuration.Observe(d.Seconds())
	r.RenderNodes.Observe(float64(nodes))
}

// ObserveMeasure records one node measurement.
func (r *Registry) ObserveMeasure(cached, fallback bool) {
	result := "measured"
	switch {
	case cached:
		result = "cached"
	case fallback:
		result = "fallback"
	}
	r.MeasurementsTotal.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
