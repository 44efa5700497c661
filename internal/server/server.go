// Package server composes format resolution, record lookup and the preview
// image cache into the HTTP surface of og-server.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/artifact"
	"github.com/Sternrassler/og-negotiator/pkg/content"
	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/Sternrassler/og-negotiator/pkg/metrics"
	"github.com/Sternrassler/og-negotiator/pkg/negotiate"
	"github.com/Sternrassler/og-negotiator/pkg/render"
	"github.com/rs/zerolog"
)

// Config wires the server's collaborators.
type Config struct {
	// Resolver picks the representation of each request (default: negotiate.NewResolver()).
	Resolver *negotiate.Resolver

	// Source looks up records by identifier (required).
	Source content.Source

	// Cache serves preview images (required).
	Cache *artifact.Cache

	// Prefetcher warms the cache in the background (required).
	Prefetcher *artifact.Prefetcher

	// Renderer draws preview images (required).
	Renderer render.Renderer

	// TTL is the lifetime of prefetched images (0 uses the cache default).
	TTL time.Duration

	// ReadyTimeout bounds the store ping of /ready (default: 2s).
	ReadyTimeout time.Duration
}

// Server serves every representation of the records in a Source.
type Server struct {
	resolver     *negotiate.Resolver
	source       content.Source
	cache        *artifact.Cache
	prefetcher   *artifact.Prefetcher
	renderer     render.Renderer
	ttl          time.Duration
	readyTimeout time.Duration
	logger       zerolog.Logger
}

// New validates cfg and creates a server.
func New(cfg Config) (*Server, error) {
	switch {
	case cfg.Source == nil:
		return nil, errors.New("content source is required")
	case cfg.Cache == nil:
		return nil, errors.New("artifact cache is required")
	case cfg.Prefetcher == nil:
		return nil, errors.New("prefetcher is required")
	case cfg.Renderer == nil:
		return nil, errors.New("renderer is required")
	}

	if cfg.Resolver == nil {
		cfg.Resolver = negotiate.NewResolver()
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 2 * time.Second
	}

	return &Server{
		resolver:     cfg.Resolver,
		source:       cfg.Source,
		cache:        cfg.Cache,
		prefetcher:   cfg.Prefetcher,
		renderer:     cfg.Renderer,
		ttl:          cfg.TTL,
		readyTimeout: cfg.ReadyTimeout,
		logger:       logging.NewLogger("server"),
	}, nil
}

// Handler returns the routed handler with logging, request IDs and panic
// recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", s.handleWelcome)
	mux.HandleFunc("GET /", s.handleResource)

	return s.middleware(mux)
}
