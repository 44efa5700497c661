package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Sternrassler/og-negotiator/pkg/artifact"
	"github.com/Sternrassler/og-negotiator/pkg/content"
	"github.com/Sternrassler/og-negotiator/pkg/negotiate"
	"github.com/Sternrassler/og-negotiator/pkg/render"
	"github.com/rs/zerolog/hlog"
)

const welcomeText = "Welcome to the dashboard example. Try /{name} to see a dashboard."

// formatNone labels requests that could not be resolved.
const formatNone = "none"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.readyTimeout)
	defer cancel()

	if err := s.cache.Store().Ping(ctx); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Readiness check failed")
		writeText(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}
	writeText(w, http.StatusOK, "OK")
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, welcomeText)
}

// handleResource serves /<id>[.<ext>] in the negotiated representation and
// warms the preview image of the record in the background.
func (s *Server) handleResource(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := hlog.FromRequest(r)

	format := formatNone
	status := http.StatusOK
	defer func() {
		RequestsTotal.WithLabelValues(format, strconv.Itoa(status)).Inc()
	}()

	rep, ok := s.resolver.Resolve(negotiate.InputFromRequest(r))
	if !ok {
		status = http.StatusBadRequest
		logger.Debug().Str("accept", r.Header.Get("Accept")).Msg("No acceptable format")
		writeText(w, status, "Unacceptable format")
		return
	}
	format = rep.String()
	NegotiationsTotal.WithLabelValues(format).Inc()
	logger.Debug().Str("format", format).Msg("Negotiated format")

	id := content.IdentifierFromPath(r.URL.Path)
	record, err := s.source.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			status = http.StatusNotFound
			writeText(w, status, "Not found")
			return
		}
		status = http.StatusInternalServerError
		logger.Error().Err(err).Str("id", id).Msg("Record lookup failed")
		writeText(w, status, "Internal server error")
		return
	}

	key := artifact.KeyFor("/" + id)
	gen := s.previewGenerator(record)
	s.prefetcher.Submit(ctx, key, gen, s.ttl)

	if rep == negotiate.Image {
		status = s.serveImage(w, r, key, gen)
		return
	}

	body, err := encode(rep, id, record)
	if err != nil {
		status = http.StatusInternalServerError
		logger.Error().Err(err).Str("format", format).Msg("Encoding failed")
		writeText(w, status, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", rep.ContentType())
	w.Header().Set("Vary", "Accept, User-Agent")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logger.Warn().Err(err).Msg("Failed to write response")
	}
}

// serveImage answers an image request from the cache and returns the status
// it wrote.
func (s *Server) serveImage(w http.ResponseWriter, r *http.Request, key artifact.Key, gen artifact.Generator) int {
	res, err := s.cache.FetchOrRenderTransient(r.Context(), key, gen)
	if err != nil {
		var genErr *artifact.GenerationError
		if !errors.As(err, &genErr) {
			genErr = &artifact.GenerationError{Key: key.String(), Op: artifact.OpRender, Err: err}
		}
		res = genErr.Result()
	}

	hlog.FromRequest(r).Debug().
		Str("key", key.String()).
		Str("source", string(res.Source)).
		Msg("Served preview image")

	if err := res.WriteResponse(w); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Failed to write response")
	}
	return res.StatusCode
}

// previewGenerator renders the preview card of record with the server's
// renderer.
func (s *Server) previewGenerator(record *content.Dashboard) artifact.Generator {
	return func(ctx context.Context) ([]byte, error) {
		doc, err := content.PreviewHTML(record)
		if err != nil {
			return nil, err
		}
		return s.renderer.Render(ctx, doc, render.DefaultOptions())
	}
}

// encode renders the textual representations.
func encode(rep negotiate.Representation, id string, record *content.Dashboard) ([]byte, error) {
	switch rep {
	case negotiate.Markdown:
		return content.Markdown(id, record)
	case negotiate.HTML:
		return content.HTML(id, record)
	case negotiate.JSON:
		return content.JSON(record)
	case negotiate.YAML:
		return content.YAML(record)
	default:
		return nil, fmt.Errorf("no encoder for %s", rep)
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
