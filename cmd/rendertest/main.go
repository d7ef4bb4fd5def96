// Command rendertest composes the annotation overlays for one frame without
// a UI and writes the result to an image file. Useful for eyeballing overlay
// changes and for pipeline debugging.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/disintegration/imaging"

	"detection-viewer/internal/annotation"
	"detection-viewer/internal/display"
	"detection-viewer/internal/maskcache"
	"detection-viewer/internal/render"
	"detection-viewer/internal/resource"
)

func main() {
	frameRef := flag.String("frame", "", "Frame image path or URL")
	annPath := flag.String("annotations", "", "Annotation list JSON file")
	out := flag.String("out", "overlay.png", "Output image path")
	width := flag.Int("width", 0, "Surface width (default: native frame width)")
	height := flag.Int("height", 0, "Surface height (default: native frame height)")
	selected := flag.String("selected", "", "Annotation id to render as selected")
	noMasks := flag.Bool("no-masks", false, "Skip the mask pass")
	flag.Parse()

	if *frameRef == "" || *annPath == "" {
		fmt.Println("Usage: rendertest -frame <path|url> -annotations <json> [-out <png>] [-width N -height N] [-selected <id>]")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := context.Background()
	fetcher := resource.NewMux()

	frame, err := fetcher.Fetch(ctx, *frameRef)
	if err != nil {
		logger.Error("loading frame failed", "ref", *frameRef, "error", err)
		os.Exit(1)
	}
	b := frame.Bounds()

	list, err := annotation.LoadFile(*annPath)
	if err != nil {
		logger.Error("loading annotations failed", "path", *annPath, "error", err)
		os.Exit(1)
	}

	opts := render.DefaultOptions()
	opts.ShowMasks = !*noMasks

	var masks render.MaskSource
	if opts.ShowMasks {
		s, errs := maskcache.FetchAll(ctx, fetcher, list, b.Dx(), b.Dy())
		for id, err := range errs {
			logger.Warn("mask fetch failed", "id", id, "error", err)
		}
		masks = s
	}

	w, h := *width, *height
	if w <= 0 {
		w = b.Dx()
	}
	if h <= 0 {
		h = b.Dy()
	}

	surface := render.Render(render.Params{
		Frame:       frame,
		Annotations: list,
		Geom:        display.FitInt(b.Dx(), b.Dy(), w, h),
		Masks:       masks,
		SelectedID:  *selected,
		Width:       w,
		Height:      h,
	}, opts)

	if err := imaging.Save(surface, *out); err != nil {
		logger.Error("writing output failed", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("overlay written", "path", *out, "annotations", len(list), "size", fmt.Sprintf("%dx%d", w, h))
}
