package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects application metrics.
type Metrics interface {
	RecordRequest(ctx context.Context, labels RequestLabels, duration time.Duration)
	Handler() http.Handler
}

// RequestLabels contains metric dimensions.
type RequestLabels struct {
	Method string
	Path   string
	Status int
}

// PrometheusMetrics records HTTP request metrics on a private registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the request collectors and registers them,
// together with the Go runtime and process collectors, on a new registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	m := &PrometheusMetrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest counts one completed request and observes its latency
func (m *PrometheusMetrics) RecordRequest(_ context.Context, labels RequestLabels, duration time.Duration) {
	m.requests.WithLabelValues(labels.Method, labels.Path, strconv.Itoa(labels.Status)).Inc()
	m.duration.WithLabelValues(labels.Method, labels.Path).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus text format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// NoopMetrics discards every measurement.
type NoopMetrics struct{}

func (NoopMetrics) RecordRequest(context.Context, RequestLabels, time.Duration) {}

// Handler answers 404 since nothing is collected
func (NoopMetrics) Handler() http.Handler {
	return http.NotFoundHandler()
}

// NewMetrics returns Prometheus metrics when enabled, NoopMetrics otherwise
func NewMetrics(enabled bool) Metrics {
	if enabled {
		return NewPrometheusMetrics()
	}
	return NoopMetrics{}
}
