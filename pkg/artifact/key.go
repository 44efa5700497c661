package artifact

import "strings"

const keyPrefix = "og"

// Key identifies a cached artifact.
type Key struct {
	// Path is the canonical resource path, e.g. "/alice".
	Path string
}

// KeyFor returns the key for the resource at path. Callers should pass the
// resource path without a representation suffix so that every representation
// of one resource shares a single artifact.
func KeyFor(path string) Key {
	return Key{Path: path}
}

// String generates the store key.
// Format: og:<path>
//
// Example:
//
//	og:/alice
func (k Key) String() string {
	path := k.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return keyPrefix + ":" + path
}
