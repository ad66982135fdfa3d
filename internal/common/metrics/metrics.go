package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Worker job metrics, labelled by Zeebe task type.
var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// Infomaniak API metrics.
var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infomaniak_operations_total",
			Help: "Operations executed per node, resource and operation",
		},
		[]string{"node", "resource", "operation", "outcome"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "infomaniak_operation_duration_seconds",
			Help:    "Duration of one operation including all pages",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"node", "resource"},
	)

	ItemsReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infomaniak_items_returned_total",
			Help: "Records emitted after response normalization",
		},
		[]string{"node"},
	)

	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infomaniak_pages_fetched_total",
			Help: "Pages fetched by the paginated transport",
		},
		[]string{"pagination"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infomaniak_http_requests_total",
			Help: "Outbound HTTP requests by method and status class",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "infomaniak_http_request_duration_seconds",
			Help: "Outbound HTTP request latency",
		},
		[]string{"method"},
	)

	TokenCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "infomaniak_token_cache_lookups_total",
			Help: "OAuth2 token cache lookups by result",
		},
		[]string{"result"},
	)
)
