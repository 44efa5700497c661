package render

import (
	"image/color"
	"strconv"
	"strings"
)

// style is the subset of inline CSS the rasterizer understands.
type style struct {
	props map[string]string
}

func parseStyle(attr string) style {
	s := style{props: make(map[string]string)}
	for _, decl := range strings.Split(attr, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		s.props[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}
	return s
}

func (s style) get(name string) (string, bool) {
	v, ok := s.props[name]
	return v, ok && v != ""
}

// absolute reports position: absolute, which box layout cannot honor.
func (s style) absolute() bool {
	v, _ := s.get("position")
	return strings.EqualFold(v, "absolute")
}

// pixels parses a "64px" style value.
func (s style) pixels(name string) (int, bool) {
	v, ok := s.get(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func (s style) color(name string) (color.RGBA, bool) {
	v, ok := s.get(name)
	if !ok {
		return color.RGBA{}, false
	}
	return parseColor(v)
}

var namedColors = map[string]color.RGBA{
	"black": {0, 0, 0, 255},
	"white": {255, 255, 255, 255},
	"red":   {255, 0, 0, 255},
	"green": {0, 128, 0, 255},
	"blue":  {0, 0, 255, 255},
	"gray":  {128, 128, 128, 255},
	"grey":  {128, 128, 128, 255},
}

// parseColor accepts #rgb, #rrggbb and a few color names.
func parseColor(v string) (color.RGBA, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if !strings.HasPrefix(v, "#") {
		return color.RGBA{}, false
	}

	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, false
	}

	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 255}, true
}
