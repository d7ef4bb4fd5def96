package display

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"detection-viewer/pkg/geometry"
)

const tol = 1e-9

func TestFitLetterbox(t *testing.T) {
	tests := []struct {
		name                   string
		imgW, imgH             float64
		surfW, surfH           float64
		scale, offsetX, offsetY float64
	}{
		{"wide frame on wider surface", 1920, 1080, 800, 400, 400.0 / 1080.0, (800 - 1920*400.0/1080.0) / 2, 0},
		{"exact fit", 640, 480, 640, 480, 1, 0, 0},
		{"upscale", 100, 100, 400, 200, 2, 100, 0},
		{"tall frame", 480, 640, 640, 640, 1, 80, 0},
		{"pillarbox", 1000, 1000, 300, 100, 0.1, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Fit(tt.imgW, tt.imgH, tt.surfW, tt.surfH)
			if !g.Ready() {
				t.Fatal("geometry should be ready")
			}
			if !scalar.EqualWithinAbs(g.Scale, tt.scale, tol) {
				t.Fatalf("scale = %v, want %v", g.Scale, tt.scale)
			}
			if !scalar.EqualWithinAbs(g.OffsetX, tt.offsetX, tol) {
				t.Fatalf("offsetX = %v, want %v", g.OffsetX, tt.offsetX)
			}
			if !scalar.EqualWithinAbs(g.OffsetY, tt.offsetY, tol) {
				t.Fatalf("offsetY = %v, want %v", g.OffsetY, tt.offsetY)
			}
		})
	}
}

// The mapped frame rectangle is always fully contained within, and centered
// in, the surface.
func TestFitContainmentAndCentering(t *testing.T) {
	sizes := []struct{ imgW, imgH, surfW, surfH float64 }{
		{1920, 1080, 800, 400},
		{640, 480, 1000, 1000},
		{333, 777, 123, 456},
		{4096, 2160, 320, 240},
	}

	for _, s := range sizes {
		g := Fit(s.imgW, s.imgH, s.surfW, s.surfH)
		tl := g.ToSurface(geometry.Point2D{X: 0, Y: 0})
		br := g.ToSurface(geometry.Point2D{X: s.imgW, Y: s.imgH})

		if tl.X < -tol || tl.Y < -tol || br.X > s.surfW+tol || br.Y > s.surfH+tol {
			t.Fatalf("frame %vx%v escapes surface %vx%v: tl=%v br=%v",
				s.imgW, s.imgH, s.surfW, s.surfH, tl, br)
		}
		// Centered: equal margins on both axes.
		if !scalar.EqualWithinAbs(tl.X, s.surfW-br.X, tol) {
			t.Fatalf("horizontal margins differ: %v vs %v", tl.X, s.surfW-br.X)
		}
		if !scalar.EqualWithinAbs(tl.Y, s.surfH-br.Y, tol) {
			t.Fatalf("vertical margins differ: %v vs %v", tl.Y, s.surfH-br.Y)
		}
		// One axis always fills the surface exactly.
		fillsX := scalar.EqualWithinAbs(br.X-tl.X, s.surfW, tol)
		fillsY := scalar.EqualWithinAbs(br.Y-tl.Y, s.surfH, tol)
		if !fillsX && !fillsY {
			t.Fatalf("neither axis fills the surface: w=%v h=%v", br.X-tl.X, br.Y-tl.Y)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	g := Fit(1920, 1080, 800, 400)
	points := []geometry.Point2D{
		{X: 0, Y: 0},
		{X: 1920, Y: 1080},
		{X: 100.5, Y: 50.25},
		{X: 1234.567, Y: 7.89},
	}
	for _, p := range points {
		got := g.ToImage(g.ToSurface(p))
		if math.Abs(got.X-p.X) > 1e-6 || math.Abs(got.Y-p.Y) > 1e-6 {
			t.Fatalf("round trip of %v yielded %v", p, got)
		}
	}
}

func TestRectToSurface(t *testing.T) {
	g := Fit(1920, 1080, 800, 400)
	r := g.RectToSurface(geometry.NewRect(100, 50, 200, 150))

	scale := 400.0 / 1080.0
	offsetX := (800 - 1920*scale) / 2
	if !scalar.EqualWithinAbs(r.X, 100*scale+offsetX, tol) {
		t.Fatalf("x = %v", r.X)
	}
	if !scalar.EqualWithinAbs(r.Y, 50*scale, tol) {
		t.Fatalf("y = %v", r.Y)
	}
	if !scalar.EqualWithinAbs(r.Width, 200*scale, tol) {
		t.Fatalf("width = %v", r.Width)
	}
	if !scalar.EqualWithinAbs(r.Height, 150*scale, tol) {
		t.Fatalf("height = %v", r.Height)
	}
}

func TestNotReady(t *testing.T) {
	cases := []Geometry{
		Fit(0, 0, 800, 400),   // frame not resolved yet
		Fit(1920, 1080, 0, 0), // collapsed surface
		Fit(-1, 1080, 800, 400),
		{},
	}
	for i, g := range cases {
		if g.Ready() {
			t.Fatalf("case %d: geometry should not be ready: %+v", i, g)
		}
	}
}
