// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the processing pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for pipeline counters.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	classificationsTotal *prometheus.CounterVec
	classifyDuration     prometheus.Histogram
	redactionsTotal      *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ajail_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ajail_http_request_duration_seconds",
			Help:    "HTTP request latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		classificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ajail_classifications_total",
			Help: "Classification runs by outcome.",
		}, []string{"outcome"}),
		classifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ajail_classify_duration_seconds",
			Help:    "Wall time of classifier collaborator calls.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		redactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ajail_redactions_total",
			Help: "Redaction passes by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.classificationsTotal,
		m.classifyDuration,
		m.redactionsTotal,
	)

	return m
}

// ObserveClassification records one classification run.
func (m *Metrics) ObserveClassification(outcome string, elapsed time.Duration) {
	m.classificationsTotal.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		m.classifyDuration.Observe(elapsed.Seconds())
	}
}

// ObserveRedaction records one redaction pass.
func (m *Metrics) ObserveRedaction(outcome string) {
	m.redactionsTotal.WithLabelValues(outcome).Inc()
}

// Handler returns the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments request counts and latency.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
