package artifact

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// ErrPrefetcherClosed is returned by tasks submitted after Close.
var ErrPrefetcherClosed = errors.New("prefetcher closed")

// DefaultPrefetchConcurrency bounds simultaneous background renders.
const DefaultPrefetchConcurrency = 4

// Task is a background RenderAndStore call.
type Task struct {
	key    Key
	done   chan struct{}
	result *Result
	err    error
}

// Key returns the artifact key the task populates.
func (t *Task) Key() Key {
	return t.key
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done. Abandoning the wait does
// not cancel the task.
func (t *Task) Wait(ctx context.Context) (*Result, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Prefetcher runs RenderAndStore calls that outlive the request which
// submitted them. Failures are always logged, whether or not anyone waits.
type Prefetcher struct {
	cache  *Cache
	sem    *semaphore.Weighted
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPrefetcher creates a prefetcher running at most maxConcurrency renders.
func NewPrefetcher(cache *Cache, maxConcurrency int) *Prefetcher {
	if cache == nil {
		panic("artifact cache cannot be nil")
	}
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultPrefetchConcurrency
	}
	return &Prefetcher{
		cache:  cache,
		sem:    semaphore.NewWeighted(int64(maxConcurrency)),
		logger: logging.NewLogger("prefetcher"),
	}
}

// Submit starts a background RenderAndStore for key. The task keeps ctx's
// values but not its cancellation, so it survives the end of the request.
func (p *Prefetcher) Submit(ctx context.Context, key Key, gen Generator, ttl time.Duration) *Task {
	task := &Task{key: key, done: make(chan struct{})}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		task.err = ErrPrefetcherClosed
		close(task.done)
		p.logger.Warn().Str("key", key.String()).Msg("Prefetch rejected, prefetcher closed")
		return task
	}
	p.wg.Add(1)
	p.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go p.run(detached, task, gen, ttl)

	return task
}

func (p *Prefetcher) run(ctx context.Context, task *Task, gen Generator, ttl time.Duration) {
	defer p.wg.Done()
	defer close(task.done)

	if err := p.sem.Acquire(ctx, 1); err != nil {
		task.err = err
		p.logger.Error().Err(err).Str("key", task.Key().String()).Msg("Prefetch could not start")
		return
	}
	defer p.sem.Release(1)

	PrefetchInflight.Inc()
	defer PrefetchInflight.Dec()

	start := time.Now()
	task.result, task.err = p.cache.RenderAndStore(ctx, task.key, gen, ttl)
	if task.err != nil {
		p.logger.Error().
			Err(task.err).
			Str("key", task.Key().String()).
			Dur("duration", time.Since(start)).
			Msg("Prefetch failed")
		return
	}

	p.logger.Debug().
		Str("key", task.Key().String()).
		Int("status", task.result.StatusCode).
		Str("source", string(task.result.Source)).
		Dur("duration", time.Since(start)).
		Msg("Prefetch complete")
}

// Close stops accepting tasks and waits for running ones until ctx is done.
func (p *Prefetcher) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		p.logger.Warn().Msg("Shutdown deadline reached with prefetches still running")
		return ctx.Err()
	}
}
