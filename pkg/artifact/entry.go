package artifact

import (
	"encoding/binary"
	"fmt"
	"time"
)

// expiryHeaderLen is the size of the big-endian unix-nano expiry prefix.
const expiryHeaderLen = 8

// record is an artifact as persisted by stores without native expiry.
type record struct {
	// Data is the artifact body
	Data []byte

	// Expires is when the record becomes stale
	Expires time.Time
}

// IsExpired returns true if the record has expired at now.
func (r *record) IsExpired(now time.Time) bool {
	return !now.Before(r.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (r *record) TTL(now time.Time) time.Duration {
	ttl := r.Expires.Sub(now)
	if ttl < 0 {
		return 0
	}
	return ttl
}

func (r *record) marshal() []byte {
	buf := make([]byte, expiryHeaderLen+len(r.Data))
	binary.BigEndian.PutUint64(buf, uint64(r.Expires.UnixNano()))
	copy(buf[expiryHeaderLen:], r.Data)
	return buf
}

func unmarshalRecord(b []byte) (*record, error) {
	if len(b) < expiryHeaderLen {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the expiry header", ErrInvalidEntry, len(b))
	}
	data := make([]byte, len(b)-expiryHeaderLen)
	copy(data, b[expiryHeaderLen:])
	return &record{
		Data:    data,
		Expires: time.Unix(0, int64(binary.BigEndian.Uint64(b))),
	}, nil
}
