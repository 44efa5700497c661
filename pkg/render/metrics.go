package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for remote render calls.
var (
	renderRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "og_render_requests_total",
		Help: "Total render service requests by status",
	}, []string{"status"})

	renderRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "og_render_retries_total",
		Help: "Total number of render retry attempts by error class",
	}, []string{"error_class"})

	renderRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "og_render_retry_exhausted_total",
		Help: "Total number of times render retries were exhausted by error class",
	}, []string{"error_class"})
)
