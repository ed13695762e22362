package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "cache_hit_total",
			Help:      "Fetches served from a live cache entry.",
		},
		[]string{"key"},
	)

	missTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "cache_miss_total",
			Help:      "Fetches that needed the network (cold or stale entry).",
		},
		[]string{"key"},
	)

	invalidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "instiwise_client",
		Name:      "cache_invalidations_total",
		Help:      "Entries marked stale by tag invalidation.",
	})

	patchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "cache_patches_total",
			Help:      "Optimistic patches applied to cache entries.",
		},
		[]string{"key"},
	)

	rollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "cache_rollbacks_total",
			Help:      "Optimistic patches undone after a failed mutation.",
		},
		[]string{"key"},
	)
)
