package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"
)

const (
	marginX      = 60
	rowPadding   = 12
	baseFontSize = 13
	defaultSize  = 16
)

var (
	defaultForeground = color.RGBA{0, 0, 0, 255}
	defaultBackground = color.RGBA{255, 255, 255, 255}
)

// block is one line of text laid out top to bottom.
type block struct {
	text     string
	fontSize int
	fg       color.RGBA
	bg       *color.RGBA
}

// Rasterizer draws the text blocks and background bars of an HTML card
// with a bitmap font. Images and SVG are not drawn.
type Rasterizer struct{}

// NewRasterizer creates the built-in renderer.
func NewRasterizer() *Rasterizer {
	return &Rasterizer{}
}

// Render rasterizes htmlDoc into a PNG of opts' size.
func (r *Rasterizer) Render(ctx context.Context, htmlDoc string, opts Options) ([]byte, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := html.Parse(strings.NewReader(htmlDoc))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	l := &layout{canvas: defaultBackground}
	if err := l.walk(root, defaultForeground, nil, defaultSize, 0); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(l.canvas), image.Point{}, xdraw.Src)

	y := 0
	for _, b := range l.blocks {
		scale := max(1, b.fontSize/baseFontSize)
		rowHeight := basicfont.Face7x13.Height*scale + 2*rowPadding
		if y >= opts.Height {
			break
		}
		if b.bg != nil {
			band := image.Rect(0, y, opts.Width, y+rowHeight)
			xdraw.Draw(img, band, image.NewUniform(*b.bg), image.Point{}, xdraw.Src)
		}
		drawText(img, marginX, y+rowPadding, b.text, scale, b.fg)
		y += rowHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// layout collects blocks in document order.
type layout struct {
	blocks []block
	canvas color.RGBA
}

// walk visits n. depth counts styled elements so the outermost background
// becomes the canvas instead of a bar.
func (l *layout) walk(n *html.Node, fg color.RGBA, bg *color.RGBA, size int, depth int) error {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "svg", "head", "img":
			return nil
		}

		s := parseStyle(attr(n, "style"))
		if s.absolute() {
			return ErrUnsupportedLayout
		}
		if c, ok := s.color("color"); ok {
			fg = c
		}
		if px, ok := s.pixels("font-size"); ok {
			size = px
		}
		if c, ok := s.color("background-color"); ok {
			if depth == 0 {
				l.canvas = c
			} else {
				bg = &c
			}
		}
		if len(s.props) > 0 {
			depth++
		}
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text.WriteString(c.Data)
		}
	}
	if t := strings.Join(strings.Fields(text.String()), " "); t != "" && n.Type == html.ElementNode {
		l.blocks = append(l.blocks, block{text: t, fontSize: size, fg: fg, bg: bg})
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode || c.Type == html.DocumentNode {
			if err := l.walk(c, fg, bg, size, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// drawText draws s at (x, y) with the bitmap font scaled by scale.
func drawText(dst *image.RGBA, x, y int, s string, scale int, fg color.Color) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, s).Ceil()
	if width == 0 {
		return
	}

	glyphs := image.NewRGBA(image.Rect(0, 0, width, face.Height))
	d := &font.Drawer{
		Dst:  glyphs,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(s)

	target := image.Rect(x, y, x+width*scale, y+face.Height*scale)
	xdraw.NearestNeighbor.Scale(dst, target, glyphs, glyphs.Bounds(), xdraw.Over, nil)
}
