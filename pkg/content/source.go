// Package content provides the dashboard records served by the server and
// their Markdown, HTML, JSON, YAML and preview-card encodings.
package content

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrNotFound is returned when no record exists for an identifier.
var ErrNotFound = errors.New("record not found")

// Dashboard is the record served in every representation.
type Dashboard struct {
	Title        string    `json:"title" yaml:"title"`
	Subtitle     string    `json:"subtitle" yaml:"subtitle"`
	TotalItems   int       `json:"totalItems" yaml:"totalItems"`
	Participants []string  `json:"participants" yaml:"participants"`
	AvatarURLs   []string  `json:"avatarUrls" yaml:"avatarUrls"`
	ContentCount int       `json:"contentCount" yaml:"contentCount"`
	Description  string    `json:"description" yaml:"description"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Source looks up records by identifier.
type Source interface {
	Lookup(ctx context.Context, id string) (*Dashboard, error)
}

// validID keeps identifiers to a single, printable path segment.
var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// DemoSource answers every well-formed identifier with the same demo stats.
type DemoSource struct {
	now func() time.Time
}

// NewDemoSource creates the demo data source.
func NewDemoSource() *DemoSource {
	return &DemoSource{now: time.Now}
}

var demoParticipants = []string{"Alice", "Bob", "Charlie", "David", "Eve", "Frank"}

// Lookup builds the dashboard for id. Malformed identifiers are not found.
func (s *DemoSource) Lookup(_ context.Context, id string) (*Dashboard, error) {
	if !validID.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	avatars := make([]string, 0, len(demoParticipants))
	for _, p := range demoParticipants {
		avatars = append(avatars, "https://i.pravatar.cc/150?u="+strings.ToLower(p))
	}

	now := s.now().UTC()
	return &Dashboard{
		Title:        displayName(id) + "'s Dashboard",
		Subtitle:     "An example dashboard for demonstration purposes",
		TotalItems:   1256,
		Participants: append([]string(nil), demoParticipants...),
		AvatarURLs:   avatars,
		ContentCount: 42,
		Description:  "This is a sample dashboard showing various metrics and statistics.",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// displayName upper-cases the first letter: "alice" -> "Alice".
func displayName(id string) string {
	if id == "" {
		return id
	}
	return strings.ToUpper(id[:1]) + id[1:]
}

// IdentifierFromPath returns the resource identifier of a request path:
// the first non-empty segment up to its first ".".
func IdentifierFromPath(path string) string {
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		id, _, _ := strings.Cut(segment, ".")
		return id
	}
	return ""
}
