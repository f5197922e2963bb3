package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// File outcomes
	FileProcessed = "processed"
	FileSkipped   = "skipped" // over the raw-line capacity limit
	FileFailed    = "failed"  // unreadable, malformed or store error

	// Failure kinds
	FailureRead      = "read"
	FailureParse     = "parse"
	FailureStore     = "store"
	FailureLabelLoad = "label_load"

	// HTTP endpoints
	EndpointHealth  = "health"
	EndpointMetrics = "metrics"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)
)

// Ingestion metrics
var (
	IngestUsersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_users_total",
			Help: "Total number of user directories ingested",
		},
	)

	IngestFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_files_total",
			Help: "Total number of trajectory files seen, by outcome",
		},
		[]string{"outcome"},
	)

	IngestFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_failures_total",
			Help: "Total number of ingestion failures, by kind",
		},
		[]string{"kind"},
	)

	ActivitiesInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activities_inserted_total",
			Help: "Total number of activities written to the store",
		},
	)

	TrackpointsInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trackpoints_inserted_total",
			Help: "Total number of trackpoints written to the store",
		},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_user_duration_seconds",
			Help:    "Time spent ingesting one user directory",
			Buckets: prometheus.DefBuckets,
		},
	)

	IngestActiveWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_active_workers",
			Help: "Number of ingestion workers currently processing a user",
		},
	)
)
