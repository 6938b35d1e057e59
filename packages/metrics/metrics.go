// Package metrics
package metrics

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AuditsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_audits_total",
			Help: "Total number of audit runs, labeled by final status.",
		},
		[]string{"status"},
	)
	AuditDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitepulse_audit_duration_seconds",
			Help:    "End-to-end duration of one audit run in seconds.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120},
		},
	)
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitepulse_fetch_duration_seconds",
			Help:    "Page fetch duration in seconds, labeled by viewport profile.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"profile"},
	)
	ExtractorFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_extractor_failures_total",
			Help: "Extractor runs that degraded to a fallback or zero result.",
		},
		[]string{"extractor"},
	)
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitepulse_provider_requests_total",
			Help: "Third-party provider calls, labeled by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitepulse_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_name"},
	)
	PendingAudits = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sitepulse_pending_audits",
			Help: "Number of audits currently waiting in the queue.",
		},
	)
)

func init() {
	prometheus.MustRegister(AuditsTotal)
	prometheus.MustRegister(AuditDuration)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(ExtractorFailures)
	prometheus.MustRegister(ProviderRequests)
	prometheus.MustRegister(DBQueryDuration)
	prometheus.MustRegister(PendingAudits)
}

func ExposeMetrics(addr string) {
	slog.Info("Exposing Prometheus metrics", "address", addr)
	http.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("Failed to start Prometheus metrics server", "error", err)
	}
}
