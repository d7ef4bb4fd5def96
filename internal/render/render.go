// Package render draws annotation overlays onto a camera frame.
//
// Render is a pure function from inputs to a composed surface: the host
// calls it again whenever any input changes (frame, annotation list, mask
// availability, selection, show flags, or sizes). Identical inputs produce
// an identical image, and every call fully clears the surface first, so
// there is never partial or interleaved drawing.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"detection-viewer/internal/annotation"
	"detection-viewer/internal/display"
	"detection-viewer/pkg/colorutil"
)

const (
	// maskThreshold separates member pixels from background in a mask raster.
	maskThreshold = 128

	maskAlpha         = 0.35
	maskAlphaSelected = 0.6

	fillAlpha         = 0.08
	fillAlphaSelected = 0.25

	strokeWidth         = 2
	strokeWidthSelected = 3

	// selectionOutlineGap is how far the dashed selection outline sits
	// outside the box.
	selectionOutlineGap = 2
)

// background fills the letterbox margins around the frame.
var background = color.RGBA{R: 24, G: 24, B: 24, A: 255}

// Options control which overlay passes are drawn.
type Options struct {
	ShowBoxes  bool
	ShowLabels bool
	ShowMasks  bool
}

// DefaultOptions has every pass enabled.
func DefaultOptions() Options {
	return Options{ShowBoxes: true, ShowLabels: true, ShowMasks: true}
}

// MaskSource supplies loaded segmentation masks by annotation id. A nil
// return means no mask is available for that id (absent, still loading, or
// failed) and the renderer degrades to boxes and labels only.
type MaskSource interface {
	Mask(id string) *image.Gray
}

// Params are the inputs of one render pass.
type Params struct {
	// Frame is the native-resolution camera frame; nil while unresolved.
	Frame image.Image

	// Annotations are drawn in list order; later entries end up on top.
	Annotations []annotation.Annotation

	// Geom maps native coordinates onto the surface. Not-ready geometry
	// (frame size unknown) skips everything but the background.
	Geom display.Geometry

	// Masks may be nil when mask rendering is off.
	Masks MaskSource

	// SelectedID is the selected annotation id, "" for none.
	SelectedID string

	// Width and Height are the surface size in pixels.
	Width, Height int
}

// Render produces the composed surface.
//
// Pass order: the frame, then every mask in list order, then every box in
// list order, then labels. Masks are drawn as one group below all boxes so
// no outline is occluded by another object's fill.
func Render(p Params, opts Options) *image.RGBA {
	w, h := p.Width, p.Height
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	if p.Frame == nil || !p.Geom.Ready() {
		return out
	}

	drawFrame(out, p.Frame, p.Geom)

	if opts.ShowMasks {
		for _, a := range p.Annotations {
			if mask := maskFor(p.Masks, a.ID); mask != nil {
				drawMask(out, a, mask, a.ID == p.SelectedID, p.Geom)
			}
		}
	}

	if opts.ShowBoxes {
		for _, a := range p.Annotations {
			hasMask := opts.ShowMasks && maskFor(p.Masks, a.ID) != nil
			drawBox(out, a, a.ID == p.SelectedID, hasMask, p.Geom)
		}
	}

	if opts.ShowLabels {
		for _, a := range p.Annotations {
			drawLabel(out, a, p.Geom)
		}
	}

	return out
}

func maskFor(src MaskSource, id string) *image.Gray {
	if src == nil {
		return nil
	}
	return src.Mask(id)
}

// Colorize turns a grayscale membership raster into a class-colored overlay
// tile. Pixels above the membership threshold become the class color with
// alpha round(v*alpha); everything else stays fully transparent.
func Colorize(mask *image.Gray, col color.RGBA, alpha float64) *image.NRGBA {
	b := mask.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			v := mask.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			if v <= maskThreshold {
				continue
			}
			a := uint8(math.Round(float64(v) * alpha))
			out.SetNRGBA(x, y, colorutil.WithAlpha(col, a))
		}
	}
	return out
}

func drawFrame(out *image.RGBA, frame image.Image, g display.Geometry) {
	b := frame.Bounds()
	dispW := int(math.Round(float64(b.Dx()) * g.Scale))
	dispH := int(math.Round(float64(b.Dy()) * g.Scale))
	if dispW < 1 || dispH < 1 {
		return
	}
	scaled := frame
	if dispW != b.Dx() || dispH != b.Dy() {
		scaled = imaging.Resize(frame, dispW, dispH, imaging.Linear)
	}
	ox := int(math.Round(g.OffsetX))
	oy := int(math.Round(g.OffsetY))
	draw.Draw(out, image.Rect(ox, oy, ox+dispW, oy+dispH), scaled, scaled.Bounds().Min, draw.Src)
}

func drawMask(out *image.RGBA, a annotation.Annotation, mask *image.Gray, selected bool, g display.Geometry) {
	alpha := maskAlpha
	if selected {
		alpha = maskAlphaSelected
	}
	tinted := Colorize(mask, a.RGBA(), alpha)

	mb := mask.Bounds()
	dispW := int(math.Round(float64(mb.Dx()) * g.Scale))
	dispH := int(math.Round(float64(mb.Dy()) * g.Scale))
	if dispW < 1 || dispH < 1 {
		return
	}
	var scaled image.Image = tinted
	if dispW != mb.Dx() || dispH != mb.Dy() {
		// Nearest neighbour keeps the membership edges hard.
		scaled = imaging.Resize(tinted, dispW, dispH, imaging.NearestNeighbor)
	}
	ox := int(math.Round(g.OffsetX))
	oy := int(math.Round(g.OffsetY))
	draw.Draw(out, image.Rect(ox, oy, ox+dispW, oy+dispH), scaled, scaled.Bounds().Min, draw.Over)
}

func drawBox(out *image.RGBA, a annotation.Annotation, selected, hasMask bool, g display.Geometry) {
	sr := g.RectToSurface(a.Box)
	x1 := int(math.Round(sr.X))
	y1 := int(math.Round(sr.Y))
	x2 := int(math.Round(sr.X + sr.Width))
	y2 := int(math.Round(sr.Y + sr.Height))
	col := a.RGBA()

	// The mask already shades the object, so an unselected masked box gets
	// no extra fill; selection always gets the stronger highlight.
	if selected {
		blendRect(out, x1, y1, x2, y2, col, fillAlphaSelected)
	} else if !hasMask {
		blendRect(out, x1, y1, x2, y2, col, fillAlpha)
	}

	width := strokeWidth
	if selected {
		width = strokeWidthSelected
	}
	strokeRect(out, x1, y1, x2, y2, col, width)

	if selected {
		dashRect(out,
			x1-selectionOutlineGap, y1-selectionOutlineGap,
			x2+selectionOutlineGap, y2+selectionOutlineGap,
			colorutil.White)
	}
}

func drawLabel(out *image.RGBA, a annotation.Annotation, g display.Geometry) {
	text := a.Label()
	if text == "" {
		return
	}

	sr := g.RectToSurface(a.Box)
	face := basicfont.Face7x13
	textW := font.MeasureString(face, text).Ceil()

	const padX, padY = 4, 2
	bgW := textW + 2*padX
	bgH := face.Height + 2*padY

	x1 := int(math.Round(sr.X))
	boxTop := int(math.Round(sr.Y))
	y1 := boxTop - bgH
	if y1 < 0 {
		// No room above the box: drop the label just inside it.
		y1 = boxTop + 2
	}

	col := a.RGBA()
	bg := image.Rect(x1, y1, x1+bgW, y1+bgH).Intersect(out.Bounds())
	draw.Draw(out, bg, image.NewUniform(col), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(colorutil.TextOn(col)),
		Face: face,
		Dot:  fixed.P(x1+padX, y1+padY+face.Ascent),
	}
	d.DrawString(text)
}

// strokeRect draws a width-px rectangle outline growing inward from the
// given edges.
func strokeRect(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, width int) {
	b := out.Bounds()
	for t := 0; t < width; t++ {
		for x := x1; x <= x2; x++ {
			setPx(out, b, x, y1+t, col)
			setPx(out, b, x, y2-t, col)
		}
		for y := y1; y <= y2; y++ {
			setPx(out, b, x1+t, y, col)
			setPx(out, b, x2-t, y, col)
		}
	}
}

// dashRect draws a 1px dashed outline, 4 pixels on and 4 off, with the
// phase anchored at the rectangle's own corner so the pattern is stable
// across redraws.
func dashRect(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	b := out.Bounds()
	for x := x1; x <= x2; x++ {
		if (x-x1)%8 < 4 {
			setPx(out, b, x, y1, col)
			setPx(out, b, x, y2, col)
		}
	}
	for y := y1; y <= y2; y++ {
		if (y-y1)%8 < 4 {
			setPx(out, b, x1, y, col)
			setPx(out, b, x2, y, col)
		}
	}
}

// blendRect composites a translucent solid fill over the existing pixels.
func blendRect(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, alpha float64) {
	b := out.Bounds()
	inv := 1 - alpha
	for y := y1; y <= y2; y++ {
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		for x := x1; x <= x2; x++ {
			if x < b.Min.X || x >= b.Max.X {
				continue
			}
			dst := out.RGBAAt(x, y)
			out.SetRGBA(x, y, color.RGBA{
				R: uint8(float64(col.R)*alpha + float64(dst.R)*inv),
				G: uint8(float64(col.G)*alpha + float64(dst.G)*inv),
				B: uint8(float64(col.B)*alpha + float64(dst.B)*inv),
				A: 255,
			})
		}
	}
}

func setPx(out *image.RGBA, b image.Rectangle, x, y int, col color.RGBA) {
	if x >= b.Min.X && x < b.Max.X && y >= b.Min.Y && y < b.Max.Y {
		out.SetRGBA(x, y, col)
	}
}
