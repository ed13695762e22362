package refetch

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "refetch_submissions_total",
			Help:      "Jobs accepted by the refetch executor.",
		},
		[]string{"shard"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "refetch_queue_full_total",
			Help:      "Submissions rejected due to shard back-pressure.",
		},
		[]string{"shard"},
	)

	retriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "refetch_retries_total",
			Help:      "Job retries after recoverable failures.",
		},
		[]string{"shard"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "instiwise_client",
			Name:      "refetch_queue_depth",
			Help:      "Jobs currently waiting per shard.",
		},
		[]string{"shard"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "instiwise_client",
			Name:      "refetch_run_seconds",
			Help:      "Job execution latency.",
		},
		[]string{"shard"},
	)
)

func labelFor(shard int) string { return strconv.Itoa(shard) }
