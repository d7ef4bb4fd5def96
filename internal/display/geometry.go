// Package display maps native image coordinates onto the rendering surface.
//
// The viewer shows a full camera frame inside a surface of arbitrary shape
// using a letterbox fit: the frame is scaled preserving aspect ratio until it
// inscribes the surface, then centered, leaving margins on one axis. The
// Geometry value captures that mapping and is recomputed from the current
// sizes on every draw, so it can never go stale.
package display

import (
	"math"

	"detection-viewer/pkg/geometry"
)

// Geometry maps native image pixel space to surface-local space.
// The zero value is "not ready": the native size is still unknown (the frame
// has not resolved) or the surface is collapsed. Callers must check Ready
// before mapping coordinates.
type Geometry struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Fit computes the letterbox geometry for an imgW x imgH frame shown on a
// surfW x surfH surface. Any non-positive dimension yields a not-ready
// Geometry.
func Fit(imgW, imgH, surfW, surfH float64) Geometry {
	if imgW <= 0 || imgH <= 0 || surfW <= 0 || surfH <= 0 {
		return Geometry{}
	}
	scale := math.Min(surfW/imgW, surfH/imgH)
	return Geometry{
		Scale:   scale,
		OffsetX: (surfW - imgW*scale) / 2,
		OffsetY: (surfH - imgH*scale) / 2,
	}
}

// FitInt is Fit for integer pixel sizes.
func FitInt(imgW, imgH, surfW, surfH int) Geometry {
	return Fit(float64(imgW), float64(imgH), float64(surfW), float64(surfH))
}

// Ready reports whether the geometry is usable for mapping.
func (g Geometry) Ready() bool {
	return g.Scale > 0
}

// ToSurface maps a native image point to surface-local coordinates.
func (g Geometry) ToSurface(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: p.X*g.Scale + g.OffsetX,
		Y: p.Y*g.Scale + g.OffsetY,
	}
}

// ToImage maps a surface-local point back to native image coordinates.
// It is the inverse of ToSurface.
func (g Geometry) ToImage(p geometry.Point2D) geometry.Point2D {
	return geometry.Point2D{
		X: (p.X - g.OffsetX) / g.Scale,
		Y: (p.Y - g.OffsetY) / g.Scale,
	}
}

// RectToSurface maps a native-space rectangle to surface-local coordinates.
func (g Geometry) RectToSurface(r geometry.Rect) geometry.Rect {
	return geometry.Rect{
		X:      r.X*g.Scale + g.OffsetX,
		Y:      r.Y*g.Scale + g.OffsetY,
		Width:  r.Width * g.Scale,
		Height: r.Height * g.Scale,
	}
}
