package reminder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remindersScheduledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "instiwise_client",
		Name:      "reminders_scheduled_total",
		Help:      "Notification triggers registered with the OS.",
	})

	remindersCanceledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "instiwise_client",
		Name:      "reminders_canceled_total",
		Help:      "Notification triggers canceled during reconciliation.",
	})
)
