package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts resource requests by representation and status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "og_requests_total",
			Help: "Resource requests by negotiated format and status code",
		},
		[]string{"format", "status"},
	)

	// NegotiationsTotal counts resolved representations.
	NegotiationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "og_negotiations_total",
			Help: "Successful format negotiations by representation",
		},
		[]string{"format"},
	)
)
