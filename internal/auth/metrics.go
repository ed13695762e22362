package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tokenRefreshTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "instiwise_client",
		Name:      "token_refresh_total",
		Help:      "Successful access-token refreshes.",
	})

	forcedLogoutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "instiwise_client",
		Name:      "forced_logout_total",
		Help:      "Sessions cleared because a token refresh failed.",
	})
)
