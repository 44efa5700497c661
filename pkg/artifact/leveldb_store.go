package artifact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStore keeps artifacts on local disk. Each value carries its own
// expiry; expired records read as a miss and are deleted on access.
type LevelDBStore struct {
	db     *leveldb.DB
	now    func() time.Time
	logger zerolog.Logger
}

// OpenLevelDBStore opens (or creates) a LevelDB database at path.
func OpenLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return NewLevelDBStore(db), nil
}

// NewLevelDBStore wraps an open database.
func NewLevelDBStore(db *leveldb.DB) *LevelDBStore {
	if db == nil {
		panic("leveldb cannot be nil")
	}
	return &LevelDBStore{
		db:     db,
		now:    time.Now,
		logger: logging.NewLogger("leveldb-store"),
	}
}

// Get retrieves an artifact by key.
func (s *LevelDBStore) Get(_ context.Context, key string) ([]byte, error) {
	raw, err := s.db.Get([]byte(key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("%w: leveldb get: %w", ErrStoreUnavailable, err)
	}

	rec, err := unmarshalRecord(raw)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if rec.IsExpired(now) {
		if err := s.db.Delete([]byte(key), nil); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete expired artifact")
		}
		return nil, ErrMiss
	}

	s.logger.Debug().Str("key", key).Dur("remaining", rec.TTL(now)).Msg("LevelDB hit")
	return rec.Data, nil
}

// Put stores an artifact that expires after ttl.
func (s *LevelDBStore) Put(_ context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive (got %v)", ttl)
	}

	rec := &record{Data: data, Expires: s.now().Add(ttl)}
	if err := s.db.Put([]byte(key), rec.marshal(), nil); err != nil {
		return fmt.Errorf("%w: leveldb put: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping reports an error once the database is closed.
func (s *LevelDBStore) Ping(_ context.Context) error {
	if _, err := s.db.GetProperty("leveldb.num-files-at-level0"); err != nil {
		return fmt.Errorf("%w: leveldb: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database.
func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
