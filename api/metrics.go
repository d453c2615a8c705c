package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/warp/attendance-engine/extract"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	tables   *prometheus.CounterVec
	rows     *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "tables_total",
			Help:      "Raw tables seen by the parser, by profile and outcome.",
		}, []string{"profile", "outcome"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "rows_total",
			Help:      "Table rows seen by the parser, by profile and outcome.",
		}, []string{"profile", "outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendance",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendance",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.tables, m.rows, m.requests, m.latency,
	)
	return m
}

// ObserveParse records the structural counters of one parse.
func (m *Metrics) ObserveParse(profile string, res extract.ParseResult) {
	m.tables.WithLabelValues(profile, "accepted").Add(float64(res.TablesSeen - res.TablesSkipped))
	m.tables.WithLabelValues(profile, "skipped").Add(float64(res.TablesSkipped))
	m.rows.WithLabelValues(profile, "accepted").Add(float64(res.RowsAccepted))
	m.rows.WithLabelValues(profile, "skipped").Add(float64(res.RowsSkipped))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
