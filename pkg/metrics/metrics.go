package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeMatched      = "matched"
	OutcomeRedirect     = "redirect"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Reload sources.
const (
	SourceStartup = "startup"
	SourceAdmin   = "admin"
	SourceWatch   = "watch"
)

// Metrics holds the collectors of one server.
type Metrics struct {
	registry *prometheus.Registry

	StubRequests   *prometheus.CounterVec
	StubDuration   *prometheus.HistogramVec
	RenderErrors   *prometheus.CounterVec
	ActiveRequests prometheus.Gauge
	CatalogSize    prometheus.Gauge
	CatalogReloads *prometheus.CounterVec
	AdminRequests  *prometheus.CounterVec
}

// New creates and registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StubRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stubd_stub_requests_total",
				Help: "Stubs portal requests by outcome.",
			},
			[]string{"outcome"},
		),
		StubDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stubd_stub_request_duration_seconds",
				Help:    "Duration of stubs portal requests in seconds, including simulated latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		RenderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stubd_stub_render_errors_total",
				Help: "Stub responses that failed to render.",
			},
			[]string{"reason"},
		),
		ActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stubd_stub_active_requests",
			Help: "Stubs portal requests being processed.",
		}),
		CatalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stubd_catalog_size",
			Help: "Number of lifecycles in the catalog.",
		}),
		CatalogReloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stubd_catalog_reloads_total",
				Help: "Full catalog reloads by source and result.",
			},
			[]string{"source", "result"},
		),
		AdminRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stubd_admin_requests_total",
				Help: "Admin portal requests by method and status code.",
			},
			[]string{"method", "status"},
		),
	}

	m.registry.MustRegister(
		m.StubRequests,
		m.StubDuration,
		m.RenderErrors,
		m.ActiveRequests,
		m.CatalogSize,
		m.CatalogReloads,
		m.AdminRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStub records one stubs portal request.
func (m *Metrics) ObserveStub(outcome string, elapsed time.Duration) {
	m.StubRequests.WithLabelValues(outcome).Inc()
	m.StubDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveAdmin records one admin portal request.
func (m *Metrics) ObserveAdmin(method string, status int) {
	m.AdminRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveReload records a full catalog reload.
func (m *Metrics) ObserveReload(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CatalogReloads.WithLabelValues(source, result).Inc()
}

// SetCatalogSize matches the repository change hook signature.
func (m *Metrics) SetCatalogSize(n int) {
	m.CatalogSize.Set(float64(n))
}
