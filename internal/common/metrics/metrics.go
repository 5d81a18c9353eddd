package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Jobs currently being processed by worker",
		},
		[]string{"task_type"},
	)

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

	// ExtractionTotal counts how a JSON block was found in model output.
	ExtractionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_extraction_total",
			Help: "JSON extraction attempts by winning strategy (fenced, braces, none)",
		},
		[]string{"strategy"},
	)

	// PayloadShapeTotal counts which normalization path produced a payload.
	PayloadShapeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_payload_shape_total",
			Help: "Normalized payloads by shape (classic, json, plain_text, empty)",
		},
		[]string{"shape"},
	)

	StorageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "survey_storage_failures_total",
			Help: "Swallowed storage failures by operation",
		},
		[]string{"operation"},
	)

	LegacyKeysMigrated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "survey_legacy_keys_migrated_total",
			Help: "Unscoped storage keys moved under a user scope",
		},
	)

	EnvelopesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "survey_envelopes_discarded_total",
			Help: "Stored envelopes ignored because they belong to another user",
		},
	)
)

const (
	StrategyFenced = "fenced"
	StrategyBraces = "braces"
	StrategyNone   = "none"

	ShapeClassic   = "classic"
	ShapeJSON      = "json"
	ShapePlainText = "plain_text"
	ShapeEmpty     = "empty"
)
