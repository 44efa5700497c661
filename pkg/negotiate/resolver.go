package negotiate

import (
	"net/http"
	"strings"
)

// wildcardAccept is what curl, fetch and most simple clients send by default.
const wildcardAccept = "*/*"

// Input is a snapshot of the request signals used for negotiation.
// An empty header value is treated as absent.
type Input struct {
	UserAgent string
	Accept    string
	Path      string
}

// InputFromRequest captures the negotiation signals of r. Repeated Accept
// lines are joined into one list.
func InputFromRequest(r *http.Request) Input {
	return Input{
		UserAgent: r.Header.Get("User-Agent"),
		Accept:    strings.Join(r.Header.Values("Accept"), ", "),
		Path:      r.URL.Path,
	}
}

// Resolver resolves representations using a fixed alias table.
type Resolver struct {
	aliases []extensionAlias
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithImageExtension lets a ".png" path suffix force the image representation.
func WithImageExtension() Option {
	return func(r *Resolver) {
		r.aliases = append(r.aliases, extensionAlias{ext: "png", rep: Image})
	}
}

// NewResolver creates a resolver with the default alias table plus opts.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		aliases: append([]extensionAlias(nil), defaultAliases...),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve resolves in using the default alias table (no png alias).
func Resolve(in Input) (Representation, bool) {
	return defaultResolver.Resolve(in)
}

// Resolve returns the representation to serve for in, or false if none of
// the client's signals name an acceptable representation.
func (r *Resolver) Resolve(in Input) (Representation, bool) {
	if _, ok := Crawler(in.UserAgent); ok {
		return HTML, true
	}

	if ext, ok := PathExtension(in.Path); ok {
		if rep, ok := r.byExtension(ext); ok {
			return rep, true
		}
	}

	if in.Accept == "" || in.Accept == wildcardAccept {
		return Markdown, true
	}

	for _, mediaRange := range ParseAccept(in.Accept) {
		for _, rep := range All() {
			if rep.MIME() == mediaRange {
				return rep, true
			}
		}
	}

	return 0, false
}

func (r *Resolver) byExtension(ext string) (Representation, bool) {
	for _, a := range r.aliases {
		if a.ext == ext {
			return a.rep, true
		}
	}
	return 0, false
}

// PathExtension returns the text after the last "." of the final path
// segment. It reports false when that segment has no ".".
func PathExtension(path string) (string, bool) {
	segment := path[strings.LastIndex(path, "/")+1:]
	dot := strings.LastIndex(segment, ".")
	if dot < 0 {
		return "", false
	}
	return segment[dot+1:], true
}

// ParseAccept splits an Accept header into bare media ranges in client order,
// dropping parameters such as q-values.
func ParseAccept(accept string) []string {
	parts := strings.Split(accept, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		mediaRange, _, _ := strings.Cut(p, ";")
		out = append(out, strings.TrimSpace(mediaRange))
	}
	return out
}
