package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/Sternrassler/og-negotiator/pkg/artifact")

// DefaultTTL is how long prefetched artifacts stay in the store.
const DefaultTTL = 24 * time.Hour

// Generator renders an artifact. It must be a pure function of its input so
// that concurrent renders for one key are interchangeable.
type Generator func(ctx context.Context) ([]byte, error)

// mode labels metrics and logs; it is not part of the API.
type mode string

const (
	modeImmediate mode = "immediate"
	modePrefetch  mode = "prefetch"
)

// Config holds cache configuration.
type Config struct {
	// TTL is used by RenderAndStore when the caller passes 0.
	TTL time.Duration

	// MaxAge is the Cache-Control max-age of served artifacts.
	MaxAge time.Duration

	// RenderTimeout bounds a single generator call (0 disables).
	RenderTimeout time.Duration
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		TTL:           DefaultTTL,
		MaxAge:        DefaultMaxAge,
		RenderTimeout: 30 * time.Second,
	}
}

// Cache applies cache-aside semantics over a Store.
type Cache struct {
	store  Store
	config Config
	logger zerolog.Logger
}

// New creates a cache over store.
func New(store Store, cfg Config) *Cache {
	if store == nil {
		panic("artifact store cannot be nil")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	return &Cache{
		store:  store,
		config: cfg,
		logger: logging.NewLogger("artifact-cache"),
	}
}

// Store returns the underlying store.
func (c *Cache) Store() Store {
	return c.store
}

// FetchOrRenderTransient returns the stored artifact for key, or renders one
// with gen and returns it without writing it to the store.
//
// A store read failure is logged and treated as a miss. A render failure is
// returned as a *GenerationError.
func (c *Cache) FetchOrRenderTransient(ctx context.Context, key Key, gen Generator) (*Result, error) {
	ctx, span := c.startSpan(ctx, "artifact.FetchOrRenderTransient", key)
	defer span.End()

	if data, ok := c.lookup(ctx, key); ok {
		span.SetAttributes(attribute.String("artifact.source", string(SourceCache)))
		return imageResult(data, SourceCache, c.config.MaxAge), nil
	}

	data, err := c.render(ctx, key, modeImmediate, gen)
	if err != nil {
		return nil, c.fail(span, key, OpRender, err)
	}

	span.SetAttributes(attribute.String("artifact.source", string(SourceGenerated)))
	return imageResult(data, SourceGenerated, c.config.MaxAge), nil
}

// RenderAndStore returns the stored artifact for key, or renders one with gen,
// writes it to the store for ttl (Config.TTL when 0) and returns a 202
// acknowledgment without the bytes.
//
// A store write failure is returned as a *GenerationError; the artifact is
// never reported as stored when it was not.
func (c *Cache) RenderAndStore(ctx context.Context, key Key, gen Generator, ttl time.Duration) (*Result, error) {
	ctx, span := c.startSpan(ctx, "artifact.RenderAndStore", key)
	defer span.End()

	if ttl <= 0 {
		ttl = c.config.TTL
	}

	if data, ok := c.lookup(ctx, key); ok {
		span.SetAttributes(attribute.String("artifact.source", string(SourceCache)))
		return imageResult(data, SourceCache, c.config.MaxAge), nil
	}

	data, err := c.render(ctx, key, modePrefetch, gen)
	if err != nil {
		return nil, c.fail(span, key, OpRender, err)
	}

	if err := c.store.Put(ctx, key.String(), data, ttl); err != nil {
		return nil, c.fail(span, key, OpStorePut, err)
	}
	StoredBytes.Add(float64(len(data)))

	c.logger.Debug().
		Str("key", key.String()).
		Int("bytes", len(data)).
		Dur("ttl", ttl).
		Msg("Stored artifact")

	span.SetAttributes(attribute.String("artifact.source", string(SourceStored)))
	return acceptedResult(), nil
}

// lookup reads key from the store. Read failures degrade to a miss.
func (c *Cache) lookup(ctx context.Context, key Key) ([]byte, bool) {
	data, err := c.store.Get(ctx, key.String())
	switch {
	case err == nil:
		ArtifactHits.Inc()
		c.logger.Debug().Str("key", key.String()).Bool("cache_hit", true).Msg("Artifact cache hit")
		return data, true
	case errors.Is(err, ErrMiss):
		ArtifactMisses.Inc()
		c.logger.Debug().Str("key", key.String()).Bool("cache_hit", false).Msg("Artifact cache miss")
	default:
		ArtifactErrors.WithLabelValues(string(OpStoreGet)).Inc()
		c.logger.Warn().
			Err(err).
			Str("key", key.String()).
			Msg("Artifact store read failed, rendering without cache")
	}
	return nil, false
}

// render runs gen under the configured timeout.
func (c *Cache) render(ctx context.Context, key Key, m mode, gen Generator) ([]byte, error) {
	if gen == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}

	if c.config.RenderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RenderTimeout)
		defer cancel()
	}

	start := time.Now()
	data, err := gen(ctx)
	RenderDuration.Observe(time.Since(start).Seconds())
	Generations.WithLabelValues(string(m)).Inc()

	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("generator returned no data")
	}

	c.logger.Debug().
		Str("key", key.String()).
		Str("mode", string(m)).
		Dur("duration", time.Since(start)).
		Msg("Rendered artifact")

	return data, nil
}

// fail logs, counts and wraps a failure.
func (c *Cache) fail(span trace.Span, key Key, op Op, err error) error {
	genErr := &GenerationError{Key: key.String(), Op: op, Err: err}

	ArtifactErrors.WithLabelValues(string(op)).Inc()
	span.RecordError(genErr)
	span.SetStatus(codes.Error, genErr.Error())

	c.logger.Error().
		Err(err).
		Str("key", key.String()).
		Str("op", string(op)).
		Msg("Artifact generation failed")

	return genErr
}

func (c *Cache) startSpan(ctx context.Context, name string, key Key) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("artifact.key", key.String())))
}
