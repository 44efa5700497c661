// Package metrics exposes the Prometheus registry of og-server.
// All metrics are defined in their respective packages (artifact, render,
// server) to maintain modularity and avoid circular dependencies.
//
// This package provides the scrape handler and documentation for all
// available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by og-server.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects everything registered in Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the metrics in Gatherer in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(Registry, promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}))
}

// Metrics Documentation
//
// Artifact Metrics (pkg/artifact):
//   - og_artifact_hits_total (Counter): Preview images served from the store
//   - og_artifact_misses_total (Counter): Store lookups that found nothing
//   - og_artifact_generations_total{mode} (Counter): Renders by mode (immediate, prefetch)
//   - og_artifact_errors_total{op} (Counter): Failures by operation (render, store-get, store-put)
//   - og_artifact_render_duration_seconds (Histogram): Generator duration
//   - og_artifact_stored_bytes (Counter): Bytes written to the store
//   - og_prefetch_inflight (Gauge): Background renders currently running
//
// Render Metrics (pkg/render):
//   - og_render_requests_total{status} (Counter): Remote render calls by HTTP status
//   - og_render_retries_total{error_class} (Counter): Retry attempts by error class
//   - og_render_retry_exhausted_total{error_class} (Counter): Calls that exhausted max retries
//
// Request Metrics (internal/server):
//   - og_requests_total{format, status} (Counter): Resource requests by negotiated format and status
//   - og_negotiations_total{format} (Counter): Successful negotiations by representation
//
// Example Prometheus Queries:
//
//   # Preview Cache Hit Rate
//   sum(rate(og_artifact_hits_total[5m])) /
//   (sum(rate(og_artifact_hits_total[5m])) + sum(rate(og_artifact_misses_total[5m])))
//
//   # Unacceptable Format Rate
//   sum(rate(og_requests_total{status="400"}[5m])) / sum(rate(og_requests_total[5m]))
//
//   # Prefetch Store Failures
//   rate(og_artifact_errors_total{op="store-put"}[5m])
//
//   # P95 Render Latency
//   histogram_quantile(0.95, rate(og_artifact_render_duration_seconds_bucket[5m]))
//
//   # Crawler Share
//   rate(og_negotiations_total{format="html"}[5m]) / sum(rate(og_negotiations_total[5m]))
