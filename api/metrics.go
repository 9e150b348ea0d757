package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry,
// so tests can build as many handlers as they like without clashing on the
// global default registry.
type Metrics struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	upstreamErrors *prometheus.CounterVec
	refreshRuns    prometheus.Counter
	refreshedLast  prometheus.Gauge
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "megascan_http_requests_total",
			Help: "HTTP requests served, by route pattern and status class",
		}, []string{"route", "code"}),
		upstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "megascan_upstream_errors_total",
			Help: "Failed reads from the chain or the explorer that were tolerated",
		}, []string{"source"}),
		refreshRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "megascan_refresh_runs_total",
			Help: "Completed watchlist refresh runs",
		}),
		refreshedLast: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "megascan_refresh_snapshots",
			Help: "Snapshots written by the last refresh run",
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.upstreamErrors,
		m.refreshRuns,
		m.refreshedLast,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (for tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware counts requests by chi route pattern. It must be installed with
// r.Use so the pattern is resolved by the time the handler returns.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, fmt.Sprintf("%dxx", status/100)).Inc()
	})
}

// UpstreamError records a tolerated failure from source ("chain", "explorer").
func (m *Metrics) UpstreamError(source string) {
	if m == nil {
		return
	}
	m.upstreamErrors.WithLabelValues(source).Inc()
}

// RefreshDone records a finished refresh run.
func (m *Metrics) RefreshDone(snapshots int) {
	if m == nil {
		return
	}
	m.refreshRuns.Inc()
	m.refreshedLast.Set(float64(snapshots))
}
