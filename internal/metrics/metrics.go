// Package metrics holds the Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "piazza",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, matched route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "piazza",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and matched route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	Interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "piazza",
		Name:      "interactions_total",
		Help:      "Like, dislike and comment attempts by outcome.",
	}, []string{"action", "outcome"})
)

// ObserveInteraction records one attempt; outcome is "applied", "noop" or an
// error kind such as "conflict".
func ObserveInteraction(action, outcome string) {
	Interactions.WithLabelValues(action, outcome).Inc()
}
