// Package fyneui is the desktop window for the traffic light viewer.
package fyneui

import (
	"context"
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-trafficlight/config"
	"github.com/nvr-ai/go-trafficlight/images"
	"github.com/nvr-ai/go-trafficlight/profiler"
	"github.com/nvr-ai/go-trafficlight/viewer"
)

const (
	appID = "io.nvr-ai.trafficlight"
	// Space reserved around the image for the button row and padding.
	chromeWidth  = 20
	chromeHeight = 80
)

// App is the viewer window. It implements viewer.Display and viewer.Notifier.
type App struct {
	app    fyne.App
	window fyne.Window
	button *widget.Button
	image  *canvas.Image
	shell  *viewer.Shell

	maxW, maxH int

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the window and wires it to a new shell.
//
// Arguments:
//   - cfg: Window title and size.
//   - loader: Reads the chosen file.
//   - detector: The loaded detection engine.
//   - annotator: Draws the detections.
//   - prof: Stage timer shared with the caller. May be nil.
//
// Returns:
//   - *App: The window, not yet shown.
func New(
	cfg config.ViewerConfig,
	loader viewer.Loader,
	detector viewer.Detector,
	annotator viewer.Annotator,
	prof *profiler.StageProfiler,
) *App {
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		app:    app.NewWithID(appID),
		maxW:   max(cfg.Width-chromeWidth, 1),
		maxH:   max(cfg.Height-chromeHeight, 1),
		ctx:    ctx,
		cancel: cancel,
	}

	a.window = a.app.NewWindow(cfg.Title)
	a.window.Resize(fyne.NewSize(float32(cfg.Width), float32(cfg.Height)))
	a.window.SetOnClosed(cancel)

	a.image = canvas.NewImageFromImage(nil)
	a.image.FillMode = canvas.ImageFillOriginal
	a.image.ScaleMode = canvas.ImageScaleSmooth

	a.button = widget.NewButton("Upload Image", a.chooseFile)

	a.shell = viewer.NewShell(loader, detector, annotator, a, a, prof)
	a.shell.OnStateChange(func(s viewer.State) {
		fyne.Do(func() {
			if s == viewer.StateIdle {
				a.button.Enable()
			} else {
				a.button.Disable()
			}
		})
	})

	top := container.NewPadded(container.NewCenter(a.button))
	a.window.SetContent(container.NewBorder(top, nil, nil, nil, container.NewCenter(a.image)))

	return a
}

// Run shows the window and blocks until it is closed.
func (a *App) Run() {
	defer a.shell.Close()
	a.window.ShowAndRun()
}

// chooseFile runs on the UI goroutine when the button is pressed.
func (a *App) chooseFile() {
	open := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.window)
			return
		}
		if r == nil {
			_ = a.shell.Select(a.ctx, "", false)
			return
		}
		path := r.URI().Path()
		r.Close()

		a.button.Disable()
		go func() {
			if err := a.shell.Select(a.ctx, path, true); errors.Is(err, viewer.ErrBusy) {
				log.Printf("⚠️  ignoring %s: %v", path, err)
			}
		}()
	}, a.window)

	// No extension filter: the loader's decoder decides what is an image.
	open.Show()
}

// Show renders a frame, replacing the previous image. Safe to call from any goroutine.
func (a *App) Show(frame images.Frame) error {
	img, err := frame.ToImage()
	if err != nil {
		return err
	}
	fitted := FitImage(img, a.maxW, a.maxH)
	size := fitted.Bounds().Size()

	fyne.Do(func() {
		a.image.Image = fitted
		a.image.SetMinSize(fyne.NewSize(float32(size.X), float32(size.Y)))
		a.image.Refresh()
	})
	return nil
}

// Info shows an information dialog. Safe to call from any goroutine.
func (a *App) Info(title, message string) {
	fyne.Do(func() {
		dialog.ShowInformation(title, message, a.window)
	})
}

// Error shows an error dialog. Safe to call from any goroutine.
func (a *App) Error(title string, err error) {
	fyne.Do(func() {
		dialog.ShowError(errors.Wrap(err, title), a.window)
	})
}

// FitImage scales img down to fit within maxW x maxH keeping its aspect
// ratio. Smaller images are returned at their own size.
func FitImage(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}
