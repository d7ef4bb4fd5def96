// Package annotation defines the detection records drawn by the overlay
// viewer and decodes the JSON lists produced by the pipeline's detection
// service.
package annotation

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	"detection-viewer/pkg/colorutil"
	"detection-viewer/pkg/geometry"
)

// Annotation is one detected object in a camera frame. Records are immutable
// once decoded; the viewer never writes them back.
type Annotation struct {
	// ID uniquely identifies the detection and is stable across redraws.
	ID string `json:"id"`

	// ClassName is the detected object class, e.g. "person" or "vehicle".
	ClassName string `json:"class_name"`

	// Box is the bounding box in native image pixels.
	Box geometry.Rect `json:"box"`

	// Color is the 6-hex-digit RGB class color, with or without a leading '#'.
	Color string `json:"color"`

	// Confidence is the detector score in [0,1].
	Confidence float64 `json:"confidence"`

	// MaskRef optionally locates a grayscale segmentation raster aligned 1:1
	// with the native frame. Empty means the detection has no mask.
	MaskRef string `json:"mask_ref,omitempty"`

	// Distance is the estimated object distance in meters, nil when the
	// pipeline did not produce one.
	Distance *float64 `json:"distance_m,omitempty"`
}

// HasMask reports whether the annotation references a segmentation mask.
func (a Annotation) HasMask() bool {
	return a.MaskRef != ""
}

// RGBA returns the class color. Unparseable colors fall back to gray so a
// bad record degrades visually instead of failing the render.
func (a Annotation) RGBA() color.RGBA {
	c, err := colorutil.ParseHex(a.Color)
	if err != nil {
		return colorutil.Gray
	}
	return c
}

// Label returns the overlay label text, e.g. "person 87% 12.3m". The
// distance segment is omitted when no distance is known.
func (a Annotation) Label() string {
	s := fmt.Sprintf("%s %d%%", a.ClassName, int(math.Round(a.Confidence*100)))
	if a.Distance != nil {
		s += fmt.Sprintf(" %.1fm", *a.Distance)
	}
	return s
}

// Decode reads an annotation list from JSON.
func Decode(r io.Reader) ([]Annotation, error) {
	var list []Annotation
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode annotations: %w", err)
	}
	return list, nil
}

// LoadFile reads an annotation list from a JSON file.
func LoadFile(path string) ([]Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open annotations: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// ContainsID reports whether the list holds an annotation with the given id.
func ContainsID(list []Annotation, id string) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}

// FindByID returns the annotation with the given id, if present.
func FindByID(list []Annotation, id string) (Annotation, bool) {
	for _, a := range list {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}
