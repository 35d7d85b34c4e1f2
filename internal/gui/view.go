package gui

import (
	"image"

	"threshold-studio/internal/gui/widgets"
	"threshold-studio/internal/histogram"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// View handles all UI components and their layout
type View struct {
	window     fyne.Window
	controller *Controller

	toolbar       *widgets.Toolbar
	imageDisplay  *widgets.ImageDisplay
	histograms    *widgets.HistogramPanel
	mainContainer *fyne.Container
}

func NewView(window fyne.Window) *View {
	view := &View{
		window: window,
	}

	view.setupComponents()
	view.setupLayout()

	return view
}

func (v *View) SetController(controller *Controller) {
	v.controller = controller
	v.setupEventHandlers()
}

func (v *View) setupComponents() {
	v.toolbar = widgets.NewToolbar()
	v.imageDisplay = widgets.NewImageDisplay()
	v.histograms = widgets.NewHistogramPanel()
}

func (v *View) setupLayout() {
	v.mainContainer = container.NewVBox(
		v.imageDisplay.GetContainer(),
		v.toolbar.GetContainer(),
		v.histograms.GetContainer(),
	)
}

func (v *View) setupEventHandlers() {
	if v.controller == nil {
		return
	}

	v.toolbar.SetUploadHandler(v.controller.LoadImage)
	v.toolbar.SetReuploadHandler(v.controller.UploadAgain)
	v.toolbar.SetApplyHandler(v.controller.ApplyThreshold)
	v.toolbar.SetResetHandler(v.controller.Reset)
	v.toolbar.SetExportHandler(v.controller.ExportImage)
	v.toolbar.SetThresholdHandler(v.controller.ThresholdChanged)

	v.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		if len(uris) > 0 {
			v.controller.LoadURI(uris[0])
		}
	})
}

func (v *View) GetMainContainer() *fyne.Container {
	return v.mainContainer
}

func (v *View) SetOriginalImage(img image.Image) {
	v.imageDisplay.SetOriginalImage(img)
}

func (v *View) SetThresholdedImage(img image.Image) {
	v.imageDisplay.SetThresholdedImage(img)
}

func (v *View) SetHistograms(original, modified histogram.Histogram) {
	v.histograms.SetHistograms(original, modified)
}

func (v *View) SetThreshold(t int) {
	v.toolbar.SetThreshold(t)
}

func (v *View) SetState(loaded, applied bool) {
	v.toolbar.SetState(loaded, applied)
}

func (v *View) SetStatus(status string) {
	v.toolbar.SetStatus(status)
}

func (v *View) ShowError(title string, err error) {
	dialog.ShowError(err, v.window)
}

func (v *View) ShowInformation(title, message string) {
	dialog.ShowInformation(title, message, v.window)
}

func (v *View) ShowOpenDialog(callback func(fyne.URIReadCloser, error)) {
	d := dialog.NewFileOpen(callback, v.window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}))
	d.Show()
}

func (v *View) ShowSaveDialog(fileName string, callback func(fyne.URIWriteCloser, error)) {
	d := dialog.NewFileSave(callback, v.window)
	d.SetFileName(fileName)
	d.Show()
}

func (v *View) GetWindow() fyne.Window {
	return v.window
}

func (v *View) Show() {
	v.window.SetContent(v.mainContainer)
	v.window.Show()
}
