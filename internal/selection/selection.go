// Package selection resolves pointer hits against the annotation list and
// tracks the single selected annotation.
package selection

import (
	"detection-viewer/internal/annotation"
	"detection-viewer/internal/display"
	"detection-viewer/pkg/geometry"
)

// HitTest maps a surface-local pointer position back to native image space
// and returns the id of the topmost annotation whose bounding box contains
// it. Later list entries draw on top of earlier ones, so the scan runs in
// reverse list order. Containment is inclusive of all four box edges.
// Not-ready geometry never hits.
func HitTest(p geometry.Point2D, list []annotation.Annotation, geom display.Geometry) (string, bool) {
	if !geom.Ready() {
		return "", false
	}
	native := geom.ToImage(p)
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Box.Contains(native) {
			return list[i].ID, true
		}
	}
	return "", false
}

// Controller owns the selection state: at most one selected annotation id.
// Every state change, including clears, invokes the registered callback.
type Controller struct {
	selected string
	onChange func(id string)
}

// NewController creates a controller with nothing selected.
func NewController() *Controller {
	return &Controller{}
}

// OnChange registers the selection callback. The id is "" when the
// selection was cleared.
func (c *Controller) OnChange(fn func(id string)) {
	c.onChange = fn
}

// Selected returns the selected annotation id, "" for none.
func (c *Controller) Selected() string {
	return c.selected
}

// Select makes id the selection. Selecting the current id is a no-op.
func (c *Controller) Select(id string) {
	if id == c.selected {
		return
	}
	c.selected = id
	c.notify()
}

// Deselect clears the selection if there is one.
func (c *Controller) Deselect() {
	if c.selected == "" {
		return
	}
	c.selected = ""
	c.notify()
}

// Toggle deselects id if it is already selected, and selects it otherwise.
func (c *Controller) Toggle(id string) {
	if id == c.selected {
		c.Deselect()
		return
	}
	c.Select(id)
}

// HandleClick applies the click semantics: a hit on the selected annotation
// deselects it, a hit on any other selects it, and a miss always clears.
// Clicks while the geometry is not ready leave the selection untouched.
func (c *Controller) HandleClick(p geometry.Point2D, list []annotation.Annotation, geom display.Geometry) {
	if !geom.Ready() {
		return
	}
	id, ok := HitTest(p, list, geom)
	if !ok {
		c.Deselect()
		return
	}
	c.Toggle(id)
}

// Reconcile clears the selection when its annotation is no longer present
// in the list.
func (c *Controller) Reconcile(list []annotation.Annotation) {
	if c.selected == "" {
		return
	}
	if !annotation.ContainsID(list, c.selected) {
		c.Deselect()
	}
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.selected)
	}
}
