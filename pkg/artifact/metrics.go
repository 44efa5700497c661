package artifact

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ArtifactHits tracks store hits
	ArtifactHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "og_artifact_hits_total",
			Help: "Total number of artifact store hits",
		},
	)

	// ArtifactMisses tracks store misses
	ArtifactMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "og_artifact_misses_total",
			Help: "Total number of artifact store misses",
		},
	)

	// Generations tracks renders by mode
	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "og_artifact_generations_total",
			Help: "Total number of artifact renders by mode",
		},
		[]string{"mode"}, // "immediate", "prefetch"
	)

	// ArtifactErrors tracks failures by operation
	ArtifactErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "og_artifact_errors_total",
			Help: "Total number of artifact generation failures by operation",
		},
		[]string{"op"}, // "render", "store-get", "store-put"
	)

	// RenderDuration tracks how long the generator takes
	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "og_artifact_render_duration_seconds",
			Help:    "Artifact render duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// StoredBytes tracks bytes written to the store
	StoredBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "og_artifact_stored_bytes",
			Help: "Total bytes of artifacts written to the store",
		},
	)

	// PrefetchInflight tracks running prefetch tasks
	PrefetchInflight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "og_prefetch_inflight",
			Help: "Number of prefetch tasks currently rendering",
		},
	)
)
