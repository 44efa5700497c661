package artifact

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	// ContentTypePNG is the media type of every artifact.
	ContentTypePNG = "image/png"

	// DefaultMaxAge bounds how long clients may reuse a served artifact.
	DefaultMaxAge = 24 * time.Hour

	// acceptedBody is the body of a prefetch acknowledgment.
	acceptedBody = "Created"
)

// Source tells where a Result's bytes came from.
type Source string

const (
	// SourceCache means the artifact was read from the store.
	SourceCache Source = "cache"

	// SourceGenerated means the artifact was rendered and not stored.
	SourceGenerated Source = "generated"

	// SourceStored means the artifact was rendered and written to the store.
	SourceStored Source = "stored"

	// SourceError means the operation failed.
	SourceError Source = "error"
)

// Result is the HTTP-shaped outcome of a cache operation.
type Result struct {
	// StatusCode is 200 for served bytes, 202 for a prefetch acknowledgment
	// and 500 for a failure.
	StatusCode int

	// Header holds Content-Type and Cache-Control.
	Header http.Header

	// Body is the artifact, the acknowledgment text or the error message.
	Body []byte

	// Source tells where Body came from.
	Source Source
}

// IsImage reports whether Body holds artifact bytes.
func (r *Result) IsImage() bool {
	return r.StatusCode == http.StatusOK && (r.Source == SourceCache || r.Source == SourceGenerated)
}

// WriteResponse writes r to w.
func (r *Result) WriteResponse(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(r.Body)))
	w.WriteHeader(r.StatusCode)

	if _, err := w.Write(r.Body); err != nil {
		return fmt.Errorf("write artifact response: %w", err)
	}
	return nil
}

// imageResult builds a 200 response carrying artifact bytes.
func imageResult(data []byte, source Source, maxAge time.Duration) *Result {
	h := make(http.Header)
	h.Set("Content-Type", ContentTypePNG)
	h.Set("Cache-Control", CacheControl(maxAge))
	return &Result{
		StatusCode: http.StatusOK,
		Header:     h,
		Body:       data,
		Source:     source,
	}
}

// acceptedResult builds the 202 acknowledgment of a prefetch.
func acceptedResult() *Result {
	h := make(http.Header)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return &Result{
		StatusCode: http.StatusAccepted,
		Header:     h,
		Body:       []byte(acceptedBody),
		Source:     SourceStored,
	}
}

// CacheControl returns the public Cache-Control directive for maxAge.
func CacheControl(maxAge time.Duration) string {
	return fmt.Sprintf("public, max-age=%d", int64(maxAge/time.Second))
}
