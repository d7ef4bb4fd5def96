// Command detection-viewer shows a camera frame from the detection pipeline
// with its annotation overlays: segmentation masks, bounding boxes, and
// labels, with click-to-select.
package main

import (
	"flag"
	"log/slog"
	"os"

	"fyne.io/fyne/v2/app"

	"detection-viewer/internal/annotation"
	"detection-viewer/internal/resource"
	"detection-viewer/ui/mainwindow"
	"detection-viewer/ui/prefs"
)

func main() {
	frame := flag.String("frame", "", "Frame image path or URL")
	annPath := flag.String("annotations", "", "Annotation list JSON file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	p := prefs.Load()
	fyneApp := app.NewWithID("detection-viewer")
	mw := mainwindow.New(fyneApp, resource.NewMux(), p, logger)

	ref := *frame
	if ref == "" {
		ref = p.String(prefs.KeyLastFrame)
	}
	if ref != "" {
		mw.Viewer().LoadFrame(ref)
		p.SetString(prefs.KeyLastFrame, ref)
	}

	if *annPath != "" {
		list, err := annotation.LoadFile(*annPath)
		if err != nil {
			logger.Error("loading annotations failed", "path", *annPath, "error", err)
			os.Exit(1)
		}
		logger.Info("annotations loaded", "path", *annPath, "count", len(list))
		mw.Viewer().SetAnnotations(list)
	}

	mw.ShowAndRun()
}
