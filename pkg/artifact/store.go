package artifact

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMiss indicates the requested key was not found in the store or has expired
	ErrMiss = errors.New("artifact cache miss")

	// ErrStoreUnavailable indicates the store could not be read or written
	ErrStoreUnavailable = errors.New("artifact store unavailable")

	// ErrInvalidEntry indicates a stored record is corrupted
	ErrInvalidEntry = errors.New("invalid artifact entry")
)

// Store is the key-value collaborator holding artifacts.
type Store interface {
	// Get returns the stored bytes or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key for ttl. A non-positive ttl is an error.
	Put(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the store's resources.
	Close() error
}
