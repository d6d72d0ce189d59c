// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the AI pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service records to. Each instance owns
// its own registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	// GenerativeCalls counts provider calls by provider, operation and result
	// ("ok" or an upstream kind).
	GenerativeCalls *prometheus.CounterVec

	// GenerativeDuration observes provider call latency.
	GenerativeDuration *prometheus.HistogramVec

	// PipelineOutcomes counts validated outputs by operation and status
	// (ok, partial, malformed, upstream_error).
	PipelineOutcomes *prometheus.CounterVec

	// IDsDropped counts model ids lost during validation ("invalid", "truncated")
	// or resolution ("unknown").
	IDsDropped *prometheus.CounterVec

	// DraftFieldsDropped counts metadata fields removed by validation.
	DraftFieldsDropped *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with a fresh registry that also carries
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		GenerativeCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinemind_generative_calls_total",
			Help: "Total number of generative model calls",
		}, []string{"provider", "operation", "result"}),
		GenerativeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinemind_generative_call_duration_seconds",
			Help:    "Duration of generative model calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}, []string{"provider", "operation"}),
		PipelineOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinemind_pipeline_outcomes_total",
			Help: "AI pipeline outcomes by operation and validation status",
		}, []string{"operation", "status"}),
		IDsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinemind_recommendation_ids_dropped_total",
			Help: "Model-supplied movie ids discarded before reaching the caller",
		}, []string{"reason"}),
		DraftFieldsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinemind_draft_fields_dropped_total",
			Help: "Metadata draft fields discarded by validation",
		}, []string{"field"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "cinemind_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cinemind_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCall records one provider call.
func (m *Metrics) ObserveCall(provider, operation, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.GenerativeCalls.WithLabelValues(provider, operation, result).Inc()
	m.GenerativeDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

// ObserveOutcome records how a pipeline run ended.
func (m *Metrics) ObserveOutcome(operation, status string) {
	if m == nil {
		return
	}
	m.PipelineOutcomes.WithLabelValues(operation, status).Inc()
}

// DropIDs adds n to the dropped-id counter for reason.
func (m *Metrics) DropIDs(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.IDsDropped.WithLabelValues(reason).Add(float64(n))
}

// DropFields counts each dropped draft field.
func (m *Metrics) DropFields(fields []string) {
	if m == nil {
		return
	}
	for _, f := range fields {
		m.DraftFieldsDropped.WithLabelValues(f).Inc()
	}
}

// ObserveRequest records one HTTP request. route is the mux pattern, not
// the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
