// Package negotiate decides which representation of a resource to serve
// for an inbound request.
//
// Resolution order:
//
//   - Known search and social crawlers always receive HTML.
//   - A recognized extension on the last path segment (/alice.json) wins.
//   - A missing Accept header or exactly "*/*" yields Markdown.
//   - Otherwise the first Accept media range that literally equals a
//     canonical MIME type is used.
//
// If nothing matches, the request is not acceptable.
package negotiate

// Representation is one of the fixed output formats a resource can be served as.
type Representation int

const (
	Markdown Representation = iota
	HTML
	JSON
	YAML
	Image
)

// representationInfo describes a representation's wire identity.
type representationInfo struct {
	name        string
	mime        string
	contentType string
}

// representations is ordered by the Representation constants.
var representations = [...]representationInfo{
	Markdown: {name: "markdown", mime: "text/markdown", contentType: "text/markdown;charset=utf8"},
	HTML:     {name: "html", mime: "text/html", contentType: "text/html;charset=utf8"},
	JSON:     {name: "json", mime: "application/json", contentType: "application/json;charset=utf8"},
	YAML:     {name: "yaml", mime: "text/yaml", contentType: "text/yaml;charset=utf8"},
	Image:    {name: "image", mime: "image/png", contentType: "image/png"},
}

// All returns every representation in canonical order.
func All() []Representation {
	return []Representation{Markdown, HTML, JSON, YAML, Image}
}

// String returns the short name, e.g. "markdown".
func (r Representation) String() string {
	if !r.valid() {
		return "unknown"
	}
	return representations[r].name
}

// MIME returns the canonical media type used for Accept matching.
func (r Representation) MIME() string {
	if !r.valid() {
		return ""
	}
	return representations[r].mime
}

// ContentType returns the Content-Type header value for responses.
func (r Representation) ContentType() string {
	if !r.valid() {
		return ""
	}
	return representations[r].contentType
}

func (r Representation) valid() bool {
	return r >= Markdown && r <= Image
}

// extensionAlias maps a path extension to a representation.
type extensionAlias struct {
	ext string
	rep Representation
}

// defaultAliases never includes png; see WithImageExtension.
var defaultAliases = []extensionAlias{
	{ext: "md", rep: Markdown},
	{ext: "html", rep: HTML},
	{ext: "json", rep: JSON},
	{ext: "yaml", rep: YAML},
}
