package selection

import (
	"testing"

	"detection-viewer/internal/annotation"
	"detection-viewer/internal/display"
	"detection-viewer/pkg/geometry"
)

func testAnnotations() []annotation.Annotation {
	return []annotation.Annotation{
		{ID: "below", Box: geometry.NewRect(10, 10, 100, 100)},
		{ID: "above", Box: geometry.NewRect(50, 50, 100, 100)},
	}
}

func identityGeom() display.Geometry {
	return display.Fit(200, 200, 200, 200)
}

func TestHitTestTopmostWins(t *testing.T) {
	list := testAnnotations()
	geom := identityGeom()

	// Point in the overlap of both boxes: the later list entry is on top.
	id, ok := HitTest(geometry.NewPoint2D(60, 60), list, geom)
	if !ok || id != "above" {
		t.Fatalf("expected topmost hit 'above', got %q ok=%v", id, ok)
	}

	// Point only inside the first box.
	id, ok = HitTest(geometry.NewPoint2D(20, 20), list, geom)
	if !ok || id != "below" {
		t.Fatalf("expected hit 'below', got %q ok=%v", id, ok)
	}

	// Miss.
	if _, ok := HitTest(geometry.NewPoint2D(190, 20), list, geom); ok {
		t.Fatal("expected miss")
	}
}

func TestHitTestInclusiveBoundary(t *testing.T) {
	list := []annotation.Annotation{{ID: "a", Box: geometry.NewRect(10, 10, 100, 100)}}
	geom := identityGeom()

	for _, p := range []geometry.Point2D{
		{X: 10, Y: 50},  // left edge
		{X: 110, Y: 50}, // right edge (x + width)
		{X: 50, Y: 10},  // top edge
		{X: 50, Y: 110}, // bottom edge
	} {
		if _, ok := HitTest(p, list, geom); !ok {
			t.Fatalf("boundary point %v should hit", p)
		}
	}
}

func TestHitTestScaledGeometry(t *testing.T) {
	// 200x200 native frame letterboxed onto a 100x50 surface:
	// scale 0.25, offsetX 25.
	list := []annotation.Annotation{{ID: "a", Box: geometry.NewRect(40, 40, 80, 80)}}
	geom := display.Fit(200, 200, 100, 50)

	// Native (80, 80) maps to surface (45, 20).
	if id, ok := HitTest(geometry.NewPoint2D(45, 20), list, geom); !ok || id != "a" {
		t.Fatalf("scaled hit failed: %q ok=%v", id, ok)
	}
	// Surface point in the letterbox margin maps outside every box.
	if _, ok := HitTest(geometry.NewPoint2D(5, 20), list, geom); ok {
		t.Fatal("margin point should miss")
	}
}

func TestHitTestNotReady(t *testing.T) {
	list := testAnnotations()
	if _, ok := HitTest(geometry.NewPoint2D(60, 60), list, display.Geometry{}); ok {
		t.Fatal("not-ready geometry must never hit")
	}
}

func TestHandleClickToggleAndClear(t *testing.T) {
	list := testAnnotations()
	geom := identityGeom()

	c := NewController()
	var events []string
	c.OnChange(func(id string) { events = append(events, id) })

	overlap := geometry.NewPoint2D(60, 60)
	miss := geometry.NewPoint2D(190, 20)

	c.HandleClick(overlap, list, geom) // select topmost
	if c.Selected() != "above" {
		t.Fatalf("selected = %q", c.Selected())
	}
	c.HandleClick(overlap, list, geom) // same annotation: toggle off
	if c.Selected() != "" {
		t.Fatalf("toggle-off failed, selected = %q", c.Selected())
	}
	c.HandleClick(geometry.NewPoint2D(20, 20), list, geom) // select other
	c.HandleClick(miss, list, geom)                        // miss clears
	if c.Selected() != "" {
		t.Fatalf("miss should clear, selected = %q", c.Selected())
	}
	c.HandleClick(miss, list, geom) // miss with nothing selected: no event

	want := []string{"above", "", "below", ""}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestHandleClickNotReadyKeepsSelection(t *testing.T) {
	list := testAnnotations()
	c := NewController()
	c.Select("above")

	c.HandleClick(geometry.NewPoint2D(60, 60), list, display.Geometry{})
	if c.Selected() != "above" {
		t.Fatal("not-ready click must not change selection")
	}
}

func TestReconcile(t *testing.T) {
	c := NewController()
	var cleared bool
	c.OnChange(func(id string) {
		if id == "" {
			cleared = true
		}
	})

	c.Select("gone")
	c.Reconcile(testAnnotations())
	if c.Selected() != "" || !cleared {
		t.Fatal("selection of a vanished annotation must revert to none")
	}

	c.Select("above")
	c.Reconcile(testAnnotations())
	if c.Selected() != "above" {
		t.Fatal("selection of a present annotation must survive reconcile")
	}
}

func TestSelectIdempotent(t *testing.T) {
	c := NewController()
	var calls int
	c.OnChange(func(string) { calls++ })

	c.Select("a")
	c.Select("a")
	c.Deselect()
	c.Deselect()
	if calls != 2 {
		t.Fatalf("expected 2 callbacks, got %d", calls)
	}
}
