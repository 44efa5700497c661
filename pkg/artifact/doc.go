// Package artifact provides cache-aside generation of derived binary
// artifacts (rendered preview images) backed by an external key-value store.
//
// The cache exposes two operations on the same pure generator:
//
//   - FetchOrRenderTransient serves a stored artifact or renders one for the
//     caller. It never writes to the store.
//   - RenderAndStore serves a stored artifact or renders one and writes it to
//     the store with a TTL, answering 202 Created instead of the bytes.
//
// Callers warm the store by submitting RenderAndStore to a Prefetcher for
// every request, independent of the representation that was negotiated, and
// await FetchOrRenderTransient only when the image itself was requested.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	c := artifact.New(artifact.NewRedisStore(redisClient), artifact.DefaultConfig())
//
//	key := artifact.KeyFor("/alice")
//	gen := func(ctx context.Context) ([]byte, error) {
//		return renderer.Render(ctx, html, render.DefaultOptions())
//	}
//
//	// Background warm-up; outlives the request.
//	prefetcher := artifact.NewPrefetcher(c, 4)
//	prefetcher.Submit(ctx, key, gen, 0)
//
//	// Synchronous image request.
//	res, err := c.FetchOrRenderTransient(ctx, key, gen)
//	var genErr *artifact.GenerationError
//	if errors.As(err, &genErr) {
//		res = genErr.Result() // 500 with the error message
//	}
//	res.WriteResponse(w)
//
// # Stores
//
// RedisStore keeps artifacts as plain values with a native expiry. LevelDBStore
// keeps them on local disk with the expiry encoded in the value and removes
// expired records lazily on read.
//
// # Concurrency
//
// No lock guards a key. Two concurrent RenderAndStore calls for the same key
// may both render and both write; the store keeps the last write. Artifacts are
// pure functions of their HTML description, so either write is correct.
//
// # Metrics
//
//   - og_artifact_hits_total - Store hits
//   - og_artifact_misses_total - Store misses
//   - og_artifact_generations_total{mode} - Renders by mode (immediate, prefetch)
//   - og_artifact_errors_total{op} - Failures by operation (render, store-get, store-put)
//   - og_artifact_render_duration_seconds - Render latency
//   - og_artifact_stored_bytes - Bytes written to the store
//   - og_prefetch_inflight - Prefetch tasks currently running
package artifact
