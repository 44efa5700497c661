package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/og-negotiator/pkg/render"
	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func fixedSource() *DemoSource {
	s := NewDemoSource()
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC) }
	return s
}

func lookup(t *testing.T, id string) *Dashboard {
	t.Helper()
	d, err := fixedSource().Lookup(context.Background(), id)
	if err != nil {
		t.Fatalf("Lookup(%q) failed: %v", id, err)
	}
	return d
}

func TestDemoSource_Lookup(t *testing.T) {
	d := lookup(t, "alice")

	if d.Title != "Alice's Dashboard" {
		t.Errorf("Title = %q, want Alice's Dashboard", d.Title)
	}
	if d.TotalItems != 1256 || d.ContentCount != 42 {
		t.Errorf("stats = %d/%d, want 1256/42", d.TotalItems, d.ContentCount)
	}
	if len(d.Participants) != 6 || len(d.AvatarURLs) != 6 {
		t.Errorf("participants/avatars = %d/%d, want 6/6", len(d.Participants), len(d.AvatarURLs))
	}
	if d.AvatarURLs[0] != "https://i.pravatar.cc/150?u=alice" {
		t.Errorf("AvatarURLs[0] = %q", d.AvatarURLs[0])
	}
}

func TestDemoSource_Lookup_NotFound(t *testing.T) {
	for _, id := range []string{"", "a b", "../etc", strings.Repeat("x", 65)} {
		_, err := fixedSource().Lookup(context.Background(), id)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Lookup(%q) = %v, want ErrNotFound", id, err)
		}
	}
}

func TestIdentifierFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/alice", "alice"},
		{"/alice.json", "alice"},
		{"/alice.v2.yaml", "alice"},
		{"//bob/extra", "bob"},
		{"/", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := IdentifierFromPath(tt.path); got != tt.want {
			t.Errorf("IdentifierFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown("alice", lookup(t, "alice"))
	if err != nil {
		t.Fatalf("Markdown failed: %v", err)
	}
	md := string(out)

	if !strings.HasPrefix(md, "# Alice's Dashboard\n") {
		t.Errorf("Markdown does not start with the title line:\n%s", md)
	}
	for _, want := range []string{
		"## Stats",
		"- Total Items: 1,256",
		"- Contributors: 6",
		"- Content Count: 42",
		"## Participants\n\n- Alice\n- Bob",
		"_Last updated: March 1, 2026 12:30 UTC_",
		"[View as JSON](/alice.json)",
		"[View Open Graph Image](/alice.png)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestHTML(t *testing.T) {
	out, err := HTML("alice", lookup(t, "alice"))
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	page := string(out)

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<meta property="og:image" content="/alice.png">`,
		"<h1>Alice's Dashboard</h1>",
		"<h2>Stats</h2>",
		`<script type="application/ld+json">{"title":`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("HTML missing %q:\n%s", want, page)
		}
	}
}

func TestJSON(t *testing.T) {
	d := lookup(t, "alice")
	out, err := JSON(d)
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	if !strings.Contains(string(out), `"title"`) {
		t.Errorf("JSON missing title: %s", out)
	}

	var back Dashboard
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("JSON is not valid: %v", err)
	}
	if diff := cmp.Diff(*d, back); diff != "" {
		t.Errorf("JSON round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestYAML(t *testing.T) {
	out, err := YAML(lookup(t, "bob"))
	if err != nil {
		t.Fatalf("YAML failed: %v", err)
	}

	var back map[string]any
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("YAML is not valid: %v", err)
	}
	if back["title"] != "Bob's Dashboard" {
		t.Errorf("title = %v, want Bob's Dashboard", back["title"])
	}
	if back["totalItems"] != 1256 {
		t.Errorf("totalItems = %v, want 1256", back["totalItems"])
	}
}

func TestPreviewHTML(t *testing.T) {
	out, err := PreviewHTML(lookup(t, "alice"))
	if err != nil {
		t.Fatalf("PreviewHTML failed: %v", err)
	}

	if strings.Contains(out, "position: absolute") {
		t.Error("preview must not use absolute positioning")
	}
	for _, want := range []string{
		"Alice&#39;s Dashboard",
		"1,256",
		"With contributions from Alice, Bob and 4 others",
		"View full content • 42 items",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q", want)
		}
	}
	if n := strings.Count(out, "<img "); n != maxAvatars {
		t.Errorf("avatar count = %d, want %d", n, maxAvatars)
	}
	if !strings.Contains(out, `alt="User 1"`) || !strings.Contains(out, fmt.Sprintf(`alt="User %d"`, maxAvatars)) {
		t.Error("avatar alt text should be numbered from 1")
	}
	if strings.Contains(out, `alt="User 0"`) {
		t.Error("avatar alt text starts at 0")
	}

	if _, err := render.NewRasterizer().Render(context.Background(), out, render.DefaultOptions()); err != nil {
		t.Errorf("preview is not renderable: %v", err)
	}
}

func TestParticipantsText(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{nil, ""},
		{[]string{"Alice"}, "Alice"},
		{[]string{"Alice", "Bob"}, "Alice and Bob"},
		{[]string{"Alice", "Bob", "Eve"}, "Alice, Bob and 1 others"},
	}

	for _, tt := range tests {
		if got := participantsText(tt.names); got != tt.want {
			t.Errorf("participantsText(%v) = %q, want %q", tt.names, got, tt.want)
		}
	}
}
