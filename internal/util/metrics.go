package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StorageReadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_reads_total",
		Help: "Total number of collection reads",
	}, []string{"collection"})

	StorageReadFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_read_failures_total",
		Help: "Total number of collection reads recovered as empty after a failure",
	}, []string{"collection"})

	StorageWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storage_writes_total",
		Help: "Total number of full collection writes",
	}, []string{"collection"})

	RecordsMutatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "records_mutated_total",
		Help: "Total number of created, updated or deleted records",
	}, []string{"collection", "action"})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "validation_failures_total",
		Help: "Total number of operations refused by validation",
	}, []string{"operation"})

	AuthorizationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authorization_failures_total",
		Help: "Total number of operations refused for lack of rights",
	}, []string{"operation"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Total number of login attempts",
	}, []string{"result"})

	CSVExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csv_exports_total",
		Help: "Total number of CSV exports",
	}, []string{"collection"})

	InvoicesGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "invoices_generated_total",
		Help: "Total number of invoices derived from orders",
	})

	CategoryRecountsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "category_recounts_total",
		Help: "Total number of category product count refreshes",
	})

	ViewComputeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "view_compute_latency_seconds",
		Help:    "Latency of list view computation",
		Buckets: prometheus.DefBuckets,
	}, []string{"collection"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
