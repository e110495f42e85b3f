package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts finished generations by execution mode and outcome.
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prepwise_generations_total",
			Help: "Total number of interview generations",
		},
		[]string{"mode", "outcome"},
	)

	// GenerationDuration tracks the duration of generations in seconds.
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prepwise_generation_duration_seconds",
			Help:    "Duration of interview generations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
		[]string{"outcome"},
	)

	// JobsInFlight tracks the number of generations currently running.
	JobsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prepwise_jobs_in_flight",
			Help: "Number of interview generations currently running",
		},
	)

	// QueueDepth tracks jobs waiting for a pool worker.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prepwise_queue_depth",
			Help: "Number of generation jobs waiting for a worker",
		},
	)

	// LedgerPolls counts poll requests by what they observed.
	LedgerPolls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prepwise_ledger_polls_total",
			Help: "Total number of job status polls",
		},
		[]string{"result"},
	)
)
