package artifact

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// memoryStore is an in-process Store with failure injection.
type memoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	gets    int
	puts    int
	getErr  error
	putErr  error
	pingErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
	}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	data, ok := s.data[key]
	if !ok {
		return nil, ErrMiss
	}
	return data, nil
}

func (s *memoryStore) Put(_ context.Context, key string, data []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive (got %v)", ttl)
	}
	s.data[key] = data
	s.ttls[key] = ttl
	return nil
}

func (s *memoryStore) Ping(context.Context) error { return s.pingErr }

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

// countingGenerator returns data and counts calls.
type countingGenerator struct {
	mu    sync.Mutex
	calls int
	data  []byte
	err   error
}

func (g *countingGenerator) generate(context.Context) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.data, nil
}

func (g *countingGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}
