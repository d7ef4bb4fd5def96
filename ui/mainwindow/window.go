// Package mainwindow provides the main application window.
package mainwindow

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"detection-viewer/internal/annotation"
	"detection-viewer/internal/resource"
	"detection-viewer/ui/prefs"
	"detection-viewer/ui/viewer"
)

// MainWindow is the primary application window: the overlay viewer with a
// toolbar of show toggles and a status bar describing the selection.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	viewer *viewer.Viewer
	prefs  *prefs.Prefs
	logger *slog.Logger

	boxesCheck  *widget.Check
	labelsCheck *widget.Check
	masksCheck  *widget.Check
	statusBar   *widget.Label
}

// New creates the main window. Overlay toggles are restored from the
// preferences store and persisted on change.
func New(fyneApp fyne.App, fetcher resource.Fetcher, p *prefs.Prefs, logger *slog.Logger) *MainWindow {
	if logger == nil {
		logger = slog.Default()
	}
	win := fyneApp.NewWindow("Detection Viewer")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		prefs:  p,
		logger: logger,
	}
	mw.viewer = viewer.New(fetcher, logger)

	mw.setupUI()
	mw.restoreToggles()

	win.SetCloseIntercept(func() {
		mw.SavePreferences()
		mw.viewer.Close()
		win.Close()
	})
	win.Resize(fyne.NewSize(960, 640))
	return mw
}

func (mw *MainWindow) setupUI() {
	mw.boxesCheck = widget.NewCheck("Boxes", func(on bool) {
		mw.viewer.SetShowBoxes(on)
		mw.prefs.SetBool(prefs.KeyShowBoxes, on)
	})
	mw.labelsCheck = widget.NewCheck("Labels", func(on bool) {
		mw.viewer.SetShowLabels(on)
		mw.prefs.SetBool(prefs.KeyShowLabels, on)
	})
	mw.masksCheck = widget.NewCheck("Masks", func(on bool) {
		mw.viewer.SetShowMasks(on)
		mw.prefs.SetBool(prefs.KeyShowMasks, on)
	})

	toolbar := container.NewHBox(
		widget.NewLabel("Overlays:"),
		mw.boxesCheck,
		mw.labelsCheck,
		mw.masksCheck,
	)

	mw.statusBar = widget.NewLabel("No selection")
	mw.viewer.OnSelectAnnotation(mw.updateStatus)

	content := container.NewBorder(
		toolbar,                           // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		mw.viewer,                         // center
	)
	mw.SetContent(content)
}

// restoreToggles applies the persisted show flags. SetChecked fires the
// callbacks, which push the state into the viewer.
func (mw *MainWindow) restoreToggles() {
	mw.boxesCheck.SetChecked(mw.prefs.Bool(prefs.KeyShowBoxes, true))
	mw.labelsCheck.SetChecked(mw.prefs.Bool(prefs.KeyShowLabels, true))
	mw.masksCheck.SetChecked(mw.prefs.Bool(prefs.KeyShowMasks, true))
}

func (mw *MainWindow) updateStatus(id string) {
	if id == "" {
		mw.statusBar.SetText("No selection")
		return
	}
	if a, ok := annotation.FindByID(mw.viewer.Annotations(), id); ok {
		mw.statusBar.SetText("Selected: " + a.Label())
		return
	}
	mw.statusBar.SetText("Selected: " + id)
}

// Viewer returns the embedded overlay viewer.
func (mw *MainWindow) Viewer() *viewer.Viewer {
	return mw.viewer
}

// SavePreferences flushes the preferences store to disk.
func (mw *MainWindow) SavePreferences() {
	if err := mw.prefs.Save(); err != nil {
		mw.logger.Warn("saving preferences failed", "error", err)
	}
}
