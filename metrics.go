package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess      = "success"
	outcomeAPIError     = "api_error"
	outcomeNoResponse   = "no_response"
	outcomeSigningError = "signing_error"
	outcomeError        = "error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smsglobal_client",
			Name:      "requests_total",
			Help:      "Signed requests by HTTP method and outcome.",
		},
		[]string{"method", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smsglobal_client",
			Name:      "request_duration_seconds",
			Help:      "Time from signing to decoded response.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func observeRequest(method, outcome string, start time.Time) {
	requestsTotal.WithLabelValues(method, outcome).Inc()
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
