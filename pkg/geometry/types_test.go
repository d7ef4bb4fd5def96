package geometry

import (
	"testing"
)

func TestRectContainsInclusiveEdges(t *testing.T) {
	r := NewRect(10, 20, 100, 50)

	tests := []struct {
		name string
		p    Point2D
		want bool
	}{
		{"interior", Point2D{X: 50, Y: 40}, true},
		{"left edge", Point2D{X: 10, Y: 40}, true},
		{"right edge", Point2D{X: 110, Y: 40}, true},
		{"top edge", Point2D{X: 50, Y: 20}, true},
		{"bottom edge", Point2D{X: 50, Y: 70}, true},
		{"corner", Point2D{X: 110, Y: 70}, true},
		{"left of rect", Point2D{X: 9.99, Y: 40}, false},
		{"right of rect", Point2D{X: 110.01, Y: 40}, false},
		{"above rect", Point2D{X: 50, Y: 19.99}, false},
		{"below rect", Point2D{X: 50, Y: 70.01}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.p); got != tt.want {
				t.Fatalf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRectContainsZeroSize(t *testing.T) {
	// Degenerate boxes still contain their own anchor point.
	r := NewRect(5, 5, 0, 0)
	if !r.Contains(Point2D{X: 5, Y: 5}) {
		t.Fatal("zero-size rect should contain its anchor")
	}
	if r.Contains(Point2D{X: 5.1, Y: 5}) {
		t.Fatal("zero-size rect should not contain a nearby point")
	}
}

func TestRectIntersectsAndUnion(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	c := NewRect(20, 20, 5, 5)

	if !a.Intersects(b) {
		t.Fatal("expected a to intersect b")
	}
	if a.Intersects(c) {
		t.Fatal("did not expect a to intersect c")
	}

	u := a.Union(c)
	if u.X != 0 || u.Y != 0 || u.Width != 25 || u.Height != 25 {
		t.Fatalf("unexpected union: %+v", u)
	}
}
