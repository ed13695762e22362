package mutation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "mutations_total",
			Help:      "Optimistic mutations dispatched.",
		},
		[]string{"entity", "operation"},
	)

	mutationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "instiwise_client",
			Name:      "mutation_failures_total",
			Help:      "Mutations rejected by the server and rolled back.",
		},
		[]string{"entity", "operation"},
	)
)
