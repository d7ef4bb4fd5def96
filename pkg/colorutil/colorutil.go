// Package colorutil provides shared color utilities for the detection viewer.
package colorutil

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Common overlay colors used throughout the application.
var (
	Black = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Gray  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
)

// ParseHex parses a 6-hex-digit RGB color string, with or without a leading
// '#'. The returned color is fully opaque.
// colorful.Hex accepts shorter inputs than the 6-digit form the pipeline
// emits, so the shape is checked here first.
func ParseHex(s string) (color.RGBA, error) {
	t := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(t) != 6 || !isHexDigits(t) {
		return color.RGBA{}, fmt.Errorf("color %q: want 6 hex digits", s)
	}
	c, err := colorful.Hex("#" + t)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

func isHexDigits(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// WithAlpha returns the color with its alpha channel replaced.
// Non-premultiplied, for use as an overlay tint.
func WithAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// TextOn picks black or white, whichever reads better on the given
// background color. Perceived lightness (Lab L) rather than HSL lightness:
// saturated hues like pure yellow are bright to the eye but sit at HSL
// lightness 0.5 and would get white text.
func TextOn(bg color.RGBA) color.RGBA {
	c, ok := colorful.MakeColor(bg)
	if !ok {
		return White
	}
	l, _, _ := c.Lab()
	if l > 0.6 {
		return Black
	}
	return White
}
