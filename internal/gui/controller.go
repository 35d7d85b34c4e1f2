// Package gui is the desktop viewer: upload an image, pick a threshold,
// compare the binarized result and both histograms, and export it.
package gui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"threshold-studio/internal/histogram"
	"threshold-studio/internal/logger"
	"threshold-studio/internal/models"
	"threshold-studio/internal/services"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

// exportBaseName is offered in the save dialog, with the export format as
// extension.
const exportBaseName = "edited_image"

var errNothingToExport = errors.New("no thresholded image to export")

// Display is the part of the view the controller drives.
type Display interface {
	SetOriginalImage(img image.Image)
	SetThresholdedImage(img image.Image)
	SetHistograms(original, modified histogram.Histogram)
	SetThreshold(t int)
	SetState(loaded, applied bool)
	SetStatus(status string)
	ShowError(title string, err error)
	ShowInformation(title, message string)
	ShowOpenDialog(callback func(fyne.URIReadCloser, error))
	ShowSaveDialog(fileName string, callback func(fyne.URIWriteCloser, error))
}

// Controller coordinates between the view and the services. Decoding and
// thresholding run off the UI goroutine; results come back through runOnMain.
type Controller struct {
	display    Display
	images     *services.ImageService
	processing *services.ProcessingService
	logger     logger.Logger
	runOnMain  func(func())

	exportFormat string

	mu       sync.Mutex
	applyGen uint64
	applyMu  sync.Mutex
	cancel   context.CancelFunc
	ctx      context.Context
}

func NewController(display Display, images *services.ImageService, processing *services.ProcessingService, log logger.Logger) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		display:      display,
		images:       images,
		processing:   processing,
		logger:       log,
		runOnMain:    fyne.Do,
		exportFormat: "jpg",
		ctx:          ctx,
		cancel:       cancel,
	}
}

// LoadImage asks the user for a file and loads it.
func (c *Controller) LoadImage() {
	c.display.ShowOpenDialog(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			c.handleError("File selection error", err)
			return
		}
		if reader == nil {
			return
		}
		c.loadAsync(reader, reader.URI().Name())
	})
}

// LoadURI loads a dropped or command-line file.
func (c *Controller) LoadURI(uri fyne.URI) {
	reader, err := storage.Reader(uri)
	if err != nil {
		c.handleError("Image load error", err)
		return
	}
	c.loadAsync(reader, uri.Name())
}

func (c *Controller) loadAsync(r io.ReadCloser, name string) {
	c.display.SetStatus("Loading image...")
	go func() {
		defer r.Close()
		if err := c.load(c.ctx, r, name); err != nil {
			c.handleError("Image load error", err)
		}
	}()
}

// load decodes r, analyzes it and refreshes the whole display.
func (c *Controller) load(ctx context.Context, r io.Reader, name string) error {
	img, err := c.images.Decode(ctx, r, name)
	if err != nil {
		return err
	}

	// applies still queued or running belong to the previous image
	c.invalidate()

	c.applyMu.Lock()
	original, err := c.processing.Analyze(ctx, img)
	c.applyMu.Unlock()
	if err != nil {
		return err
	}

	c.runOnMain(func() {
		c.display.SetOriginalImage(img.Buffer.Image())
		c.display.SetThresholdedImage(nil)
		c.display.SetHistograms(original, histogram.Histogram{})
		c.display.SetThreshold(0)
		c.display.SetState(true, false)
		c.display.SetStatus(fmt.Sprintf("Loaded %s (%dx%d)", img.Name, img.Buffer.Width, img.Buffer.Height))
	})

	c.logger.Info("Controller", "image loaded", map[string]interface{}{
		"name":   img.Name,
		"width":  img.Buffer.Width,
		"height": img.Buffer.Height,
		"format": img.Format,
	})
	return nil
}

// ThresholdChanged records the slider value in the session; nothing is
// computed until ApplyThreshold.
func (c *Controller) ThresholdChanged(t int) {
	if err := c.processing.SelectThreshold(t); err != nil {
		c.logger.Warning("Controller", "threshold ignored", map[string]interface{}{
			"threshold": t,
			"error":     err.Error(),
		})
	}
}

// ApplyThreshold binarizes the original image at the selected threshold.
// A newer request supersedes one still waiting to run.
func (c *Controller) ApplyThreshold() {
	t, gen := c.nextApply()

	c.display.SetStatus("Applying threshold...")
	go func() {
		if err := c.apply(c.ctx, t, gen); err != nil {
			c.handleError("Threshold error", err)
		}
	}()
}

func (c *Controller) nextApply() (int, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyGen++
	return c.processing.SelectedThreshold(), c.applyGen
}

func (c *Controller) apply(ctx context.Context, t int, gen uint64) error {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	if !c.current(gen) {
		return nil
	}

	result, err := c.processing.ApplyThreshold(ctx, t)
	// superseded while running: a newer action owns the display
	if !c.current(gen) || models.IsStale(err) || errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}

	snap := c.processing.Snapshot()
	c.runOnMain(func() {
		// a load, reset or upload again may have run since the result was taken
		if !c.current(gen) {
			return
		}
		c.display.SetThresholdedImage(result.Buffer.Image())
		c.display.SetHistograms(snap.OriginalHistogram, result.Histogram)
		c.display.SetState(true, true)
		c.display.SetStatus(fmt.Sprintf("Threshold %d: %d white, %d black", t, result.White(), result.Black()))
	})
	return nil
}

// invalidate abandons pending applies and keeps any of their results off
// the display.
func (c *Controller) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyGen++
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.applyGen
}

// Reset drops the thresholded image and returns the slider to 0. It does
// not wait for an apply in flight: the session refuses that apply's result.
func (c *Controller) Reset() {
	c.invalidate()
	c.processing.Reset()
	snap := c.processing.Snapshot()

	c.display.SetThresholdedImage(nil)
	c.display.SetHistograms(snap.OriginalHistogram, histogram.Histogram{})
	c.display.SetThreshold(0)
	c.display.SetState(snap.Loaded(), false)
	c.display.SetStatus("Reset")
}

// UploadAgain forgets the image and returns to the upload prompt.
func (c *Controller) UploadAgain() {
	c.invalidate()
	c.processing.Clear()

	c.display.SetOriginalImage(nil)
	c.display.SetThresholdedImage(nil)
	c.display.SetHistograms(histogram.Histogram{}, histogram.Histogram{})
	c.display.SetThreshold(0)
	c.display.SetState(false, false)
	c.display.SetStatus("Ready")
}

// ExportImage saves the thresholded image through a save dialog.
func (c *Controller) ExportImage() {
	if c.processing.Snapshot().Result == nil {
		c.handleError("Export error", errNothingToExport)
		return
	}

	c.display.ShowSaveDialog(c.ExportName(), func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			c.handleError("File save error", err)
			return
		}
		if writer == nil {
			return
		}

		c.display.SetStatus("Saving image...")
		go func() {
			defer writer.Close()
			if err := c.export(writer, writer.URI().Name()); err != nil {
				c.handleError("Image save error", err)
				return
			}
			c.runOnMain(func() { c.display.SetStatus("Image saved successfully") })
		}()
	})
}

// SetExportFormat changes the format used when the chosen file name has no
// extension.
func (c *Controller) SetExportFormat(format string) {
	if format != "" {
		c.exportFormat = strings.TrimPrefix(strings.ToLower(format), ".")
	}
}

// ExportName is the file name proposed by the save dialog.
func (c *Controller) ExportName() string {
	return exportBaseName + "." + c.exportFormat
}

// export encodes the current result to w. The format follows the extension
// of name and falls back to the configured export format.
func (c *Controller) export(w io.Writer, name string) error {
	result := c.processing.Snapshot().Result
	if result == nil {
		return errNothingToExport
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	if format == "" {
		format = c.exportFormat
	}

	if err := c.images.Export(w, result.Buffer, format); err != nil {
		return err
	}

	c.logger.Info("Controller", "image exported", map[string]interface{}{
		"name":      name,
		"format":    format,
		"threshold": result.Threshold,
	})
	return nil
}

// ShowStats reports processing timings in a dialog.
func (c *Controller) ShowStats() {
	stats := c.processing.GetProcessingStats()
	c.display.ShowInformation("Processing Statistics", FormatStats(stats))
}

// FormatStats renders processing statistics for display.
func FormatStats(stats services.ProcessingStats) string {
	return fmt.Sprintf("Histograms: %d (avg %s)\nThresholds: %d (avg %s)\nFailures: %d\nWorkers: %d",
		stats.Analyses.Count, stats.Analyses.Average,
		stats.Thresholds.Count, stats.Thresholds.Average,
		stats.Failed, stats.Workers)
}

func (c *Controller) handleError(title string, err error) {
	c.logger.Error("Controller", err, map[string]interface{}{
		"title": title,
	})

	c.runOnMain(func() {
		c.display.SetStatus(title)
		c.display.ShowError(title, err)
	})
}

// Shutdown cancels work in flight.
func (c *Controller) Shutdown() {
	c.cancel()
	c.logger.Info("Controller", "shutdown completed", nil)
}
