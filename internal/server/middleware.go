package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// middleware wraps next with, from outermost: a request-scoped logger, the
// access log, request IDs and panic recovery.
func (s *Server) middleware(next http.Handler) http.Handler {
	h := recoverPanics(next)
	h = requestID(h)
	h = hlog.AccessHandler(accessLog)(h)
	return hlog.NewHandler(s.logger)(h)
}

// requestID reuses a client-supplied X-Request-ID or generates a UUID, and
// adds it and the path to the request logger.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return logging.WithRequest(c, id, r.URL.Path)
		})
		next.ServeHTTP(w, r)
	})
}

// recoverPanics turns a handler panic into a 500.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			hlog.FromRequest(r).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Recovered handler panic")
			writeText(w, http.StatusInternalServerError, "Internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request served")
}
