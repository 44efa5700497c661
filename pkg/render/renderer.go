// Package render turns an HTML description into a fixed-size raster image.
//
// Two renderers are provided: Rasterizer draws the text blocks and colored
// bars of a flex-only card locally, and Remote delegates to an HTTP render
// service with retry and backoff.
//
// The HTML must use box layout only; position: absolute is rejected.
package render

import "context"

// Default output dimensions of a preview image.
const (
	DefaultWidth  = 1200
	DefaultHeight = 630
	FormatPNG     = "png"
)

// Options describes the raster output.
type Options struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// DefaultOptions returns 1200x630 PNG.
func DefaultOptions() Options {
	return Options{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Format: FormatPNG,
	}
}

// Validate checks dimensions and format.
func (o Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return &OptionsError{Field: "size", Value: o}
	}
	if o.Format != FormatPNG {
		return &OptionsError{Field: "format", Value: o}
	}
	return nil
}

// Renderer renders an HTML description to image bytes.
type Renderer interface {
	Render(ctx context.Context, html string, opts Options) ([]byte, error)
}

// Func adapts a function to Renderer.
type Func func(ctx context.Context, html string, opts Options) ([]byte, error)

// Render calls f.
func (f Func) Render(ctx context.Context, html string, opts Options) ([]byte, error) {
	return f(ctx, html, opts)
}
