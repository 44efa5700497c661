package artifact

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestRecord_IsExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{
			name:    "expired record",
			expires: now.Add(-1 * time.Hour),
			want:    true,
		},
		{
			name:    "valid record",
			expires: now.Add(1 * time.Hour),
			want:    false,
		},
		{
			name:    "expires exactly now",
			expires: now,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &record{Expires: tt.expires}
			if got := r.IsExpired(now); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_TTL(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		expires time.Time
		want    time.Duration
	}{
		{
			name:    "one hour remaining",
			expires: now.Add(1 * time.Hour),
			want:    1 * time.Hour,
		},
		{
			name:    "already expired",
			expires: now.Add(-1 * time.Hour),
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &record{Expires: tt.expires}
			if got := r.TTL(now); got != tt.want {
				t.Errorf("TTL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecord_MarshalRoundTrip(t *testing.T) {
	expires := time.Unix(1700000000, 123)
	in := &record{Data: []byte("\x89PNG\r\n"), Expires: expires}

	out, err := unmarshalRecord(in.marshal())
	if err != nil {
		t.Fatalf("unmarshalRecord failed: %v", err)
	}
	if !bytes.Equal(out.Data, in.Data) {
		t.Errorf("Data = %q, want %q", out.Data, in.Data)
	}
	if !out.Expires.Equal(expires) {
		t.Errorf("Expires = %v, want %v", out.Expires, expires)
	}
}

func TestUnmarshalRecord_Short(t *testing.T) {
	_, err := unmarshalRecord([]byte{1, 2, 3})
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry, got %v", err)
	}
}
