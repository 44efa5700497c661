package artifact

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrGenerationFailed matches every *GenerationError via errors.Is.
var ErrGenerationFailed = errors.New("artifact generation failed")

// Op names the step of a cache operation that failed.
type Op string

const (
	// OpRender is the generator call.
	OpRender Op = "render"

	// OpStoreGet is the store read.
	OpStoreGet Op = "store-get"

	// OpStorePut is the store write of a prefetch.
	OpStorePut Op = "store-put"
)

// GenerationError reports a failed cache operation.
type GenerationError struct {
	Key string
	Op  Op
	Err error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("artifact %s: %s failed: %v", e.Key, e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is reports ErrGenerationFailed as a match.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// Result converts the error into a 500 response carrying its message.
func (e *GenerationError) Result() *Result {
	h := make(http.Header)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	return &Result{
		StatusCode: http.StatusInternalServerError,
		Header:     h,
		Body:       []byte("Error generating preview image: " + e.Error()),
		Source:     SourceError,
	}
}
