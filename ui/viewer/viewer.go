// Package viewer provides the annotation overlay widget: a camera frame
// letterboxed into the widget area with segmentation masks, bounding boxes,
// and labels drawn on top, and click-to-select on the boxes.
package viewer

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"detection-viewer/internal/annotation"
	"detection-viewer/internal/display"
	"detection-viewer/internal/maskcache"
	"detection-viewer/internal/render"
	"detection-viewer/internal/resource"
	"detection-viewer/internal/selection"
	"detection-viewer/pkg/geometry"
)

// Viewer displays one frame with its annotation overlays.
type Viewer struct {
	widget.BaseWidget

	mu          sync.RWMutex
	frame       image.Image
	frameW      int
	frameH      int
	annotations []annotation.Annotation
	opts        render.Options
	gen         uint64
	closed      bool

	fetcher resource.Fetcher
	logger  *slog.Logger
	masks   *maskcache.Cache
	sel     *selection.Controller
	raster  *fynecanvas.Raster

	onSelect func(id string)
}

// New creates an empty viewer. Masks and frames are fetched through the
// given fetcher; a nil logger falls back to slog.Default.
func New(fetcher resource.Fetcher, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	v := &Viewer{
		fetcher: fetcher,
		logger:  logger,
		opts:    render.DefaultOptions(),
		masks:   maskcache.New(fetcher, logger),
		sel:     selection.NewController(),
	}

	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels
	v.raster.SetMinSize(fyne.NewSize(400, 300))

	// A mask resolving or the selection changing both invalidate the
	// composed surface.
	v.masks.OnChange(func() { v.raster.Refresh() })
	v.sel.OnChange(func(id string) {
		v.raster.Refresh()
		if v.onSelect != nil {
			v.onSelect(id)
		}
	})

	v.ExtendBaseWidget(v)
	return v
}

// SetFrame replaces the displayed frame. Any frame load still in flight is
// discarded when it resolves.
func (v *Viewer) SetFrame(img image.Image) {
	v.mu.Lock()
	v.gen++
	v.frame = img
	v.frameW, v.frameH = 0, 0
	if img != nil {
		b := img.Bounds()
		v.frameW, v.frameH = b.Dx(), b.Dy()
	}
	v.mu.Unlock()

	v.masks.SetNativeSize(v.frameW, v.frameH)
	v.raster.Refresh()
}

// LoadFrame fetches the frame referenced by ref in the background and
// displays it once decoded. A newer SetFrame or LoadFrame call supersedes
// the fetch; the stale result is dropped.
func (v *Viewer) LoadFrame(ref string) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.gen++
	gen := v.gen
	v.mu.Unlock()

	go func() {
		img, err := v.fetcher.Fetch(context.Background(), ref)
		if err != nil {
			v.logger.Warn("frame fetch failed", "ref", ref, "error", err)
			return
		}

		v.mu.Lock()
		if v.closed || v.gen != gen {
			v.mu.Unlock()
			v.logger.Debug("dropping stale frame", "ref", ref)
			return
		}
		b := img.Bounds()
		v.frame = img
		v.frameW, v.frameH = b.Dx(), b.Dy()
		v.mu.Unlock()

		v.masks.SetNativeSize(b.Dx(), b.Dy())
		v.raster.Refresh()
	}()
}

// SetAnnotations replaces the annotation list, kicks off mask fetches for
// the new records, and clears the selection if its annotation vanished.
func (v *Viewer) SetAnnotations(list []annotation.Annotation) {
	cp := make([]annotation.Annotation, len(list))
	copy(cp, list)

	v.mu.Lock()
	v.annotations = cp
	v.mu.Unlock()

	v.masks.EnsureAll(cp)
	v.sel.Reconcile(cp)
	v.raster.Refresh()
}

// Annotations returns the current annotation list.
func (v *Viewer) Annotations() []annotation.Annotation {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.annotations
}

// SetShowBoxes toggles the bounding box pass.
func (v *Viewer) SetShowBoxes(show bool) {
	v.mu.Lock()
	v.opts.ShowBoxes = show
	v.mu.Unlock()
	v.raster.Refresh()
}

// SetShowLabels toggles the label pass.
func (v *Viewer) SetShowLabels(show bool) {
	v.mu.Lock()
	v.opts.ShowLabels = show
	v.mu.Unlock()
	v.raster.Refresh()
}

// SetShowMasks toggles the mask pass.
func (v *Viewer) SetShowMasks(show bool) {
	v.mu.Lock()
	v.opts.ShowMasks = show
	v.mu.Unlock()
	v.raster.Refresh()
}

// Options returns the current overlay toggles.
func (v *Viewer) Options() render.Options {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.opts
}

// OnSelectAnnotation registers a callback fired on every selection change,
// with "" when the selection was cleared.
func (v *Viewer) OnSelectAnnotation(fn func(id string)) {
	v.onSelect = fn
}

// Selected returns the selected annotation id, "" for none.
func (v *Viewer) Selected() string {
	return v.sel.Selected()
}

// SetSelected selects the given annotation id programmatically.
func (v *Viewer) SetSelected(id string) {
	if id == "" {
		v.sel.Deselect()
		return
	}
	v.sel.Select(id)
}

// MaskState returns the mask cache state for an annotation id.
func (v *Viewer) MaskState(id string) maskcache.State {
	return v.masks.State(id)
}

// Tapped implements click-to-select: a hit toggles the annotation under the
// pointer, a miss clears the selection.
func (v *Viewer) Tapped(ev *fyne.PointEvent) {
	size := v.Size()

	v.mu.RLock()
	list := v.annotations
	geom := display.Fit(float64(v.frameW), float64(v.frameH), float64(size.Width), float64(size.Height))
	v.mu.RUnlock()

	p := geometry.NewPoint2D(float64(ev.Position.X), float64(ev.Position.Y))
	v.sel.HandleClick(p, list, geom)
}

// Close tears the viewer down and cancels in-flight fetches. Late frame or
// mask resolutions are discarded.
func (v *Viewer) Close() {
	v.mu.Lock()
	v.closed = true
	v.gen++
	v.mu.Unlock()
	v.masks.Close()
}

// draw is the raster drawing function. The geometry is recomputed from the
// current raster size on every call, so resizes are picked up on the next
// paint without extra bookkeeping.
func (v *Viewer) draw(w, h int) image.Image {
	v.mu.RLock()
	p := render.Params{
		Frame:       v.frame,
		Annotations: v.annotations,
		Geom:        display.FitInt(v.frameW, v.frameH, w, h),
		Masks:       v.masks,
		SelectedID:  v.sel.Selected(),
		Width:       w,
		Height:      h,
	}
	opts := v.opts
	v.mu.RUnlock()

	return render.Render(p, opts)
}

// CreateRenderer implements fyne.Widget.
func (v *Viewer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}
