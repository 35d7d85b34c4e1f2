package widgets

import (
	"fmt"
	"image/color"

	"threshold-studio/internal/pixel"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type Toolbar struct {
	container      *fyne.Container
	uploadButton   *widget.Button
	applyButton    *widget.Button
	resetButton    *widget.Button
	reuploadButton *widget.Button
	exportButton   *widget.Button
	slider         *widget.Slider
	thresholdLabel *widget.Label
	statusLabel    *widget.Label

	uploadHandler    func()
	applyHandler     func()
	resetHandler     func()
	reuploadHandler  func()
	exportHandler    func()
	thresholdHandler func(int)
}

func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	toolbar.SetState(false, false)
	return toolbar
}

func (t *Toolbar) createComponents() {
	t.uploadButton = widget.NewButton("Upload a file", t.onUploadClicked)
	t.uploadButton.Importance = widget.HighImportance

	t.applyButton = widget.NewButton("Apply", t.onApplyClicked)
	t.applyButton.Importance = widget.HighImportance

	t.resetButton = widget.NewButton("Reset", t.onResetClicked)
	t.reuploadButton = widget.NewButton("Upload again", t.onReuploadClicked)

	t.exportButton = widget.NewButton("Export as JPG", t.onExportClicked)
	t.exportButton.Importance = widget.SuccessImportance

	// the slider bounds are the only place a threshold is clamped
	t.slider = widget.NewSlider(0, pixel.MaxThreshold)
	t.slider.Step = 1
	t.slider.OnChanged = t.onSliderChanged
	t.thresholdLabel = widget.NewLabel(ThresholdLabel(0))

	t.statusLabel = widget.NewLabel("Ready")
}

func (t *Toolbar) buildLayout() {
	background := canvas.NewRectangle(color.RGBA{R: 248, G: 249, B: 250, A: 255})

	thresholdGroup := container.NewBorder(nil, nil, t.thresholdLabel, t.applyButton, t.slider)

	actionSection := container.NewHBox(
		t.uploadButton,
		t.reuploadButton,
		widget.NewSeparator(),
		t.resetButton,
		t.exportButton,
	)

	content := container.NewVBox(
		thresholdGroup,
		container.NewBorder(nil, nil, actionSection, t.statusLabel),
	)

	t.container = container.NewStack(
		background,
		container.NewPadded(content),
	)
}

// ThresholdLabel formats the slider caption.
func ThresholdLabel(v int) string {
	return fmt.Sprintf("Threshold (%d)", v)
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}

// SetState enables the controls that make sense for the session: apply and
// reset need an image, export needs an applied threshold.
func (t *Toolbar) SetState(loaded, applied bool) {
	setEnabled(t.uploadButton, !loaded)
	setEnabled(t.reuploadButton, loaded)
	setEnabled(t.applyButton, loaded)
	setEnabled(t.resetButton, loaded)
	setEnabled(t.exportButton, applied)
	if loaded {
		t.slider.Enable()
	} else {
		t.slider.Disable()
	}
}

// SetThreshold moves the slider without notifying the threshold handler.
func (t *Toolbar) SetThreshold(v int) {
	handler := t.slider.OnChanged
	t.slider.OnChanged = nil
	t.slider.SetValue(float64(v))
	t.slider.OnChanged = handler
	t.thresholdLabel.SetText(ThresholdLabel(v))
}

func (t *Toolbar) Threshold() int {
	return int(t.slider.Value)
}

func (t *Toolbar) SetStatus(status string) {
	t.statusLabel.SetText(status)
}

func (t *Toolbar) Status() string {
	return t.statusLabel.Text
}

func (t *Toolbar) SetUploadHandler(handler func()) { t.uploadHandler = handler }
func (t *Toolbar) SetApplyHandler(handler func()) { t.applyHandler = handler }
func (t *Toolbar) SetResetHandler(handler func()) { t.resetHandler = handler }
func (t *Toolbar) SetReuploadHandler(handler func()) { t.reuploadHandler = handler }
func (t *Toolbar) SetExportHandler(handler func()) { t.exportHandler = handler }
func (t *Toolbar) SetThresholdHandler(handler func(int)) { t.thresholdHandler = handler }

func (t *Toolbar) onUploadClicked() {
	if t.uploadHandler != nil {
		t.uploadHandler()
	}
}

func (t *Toolbar) onApplyClicked() {
	if t.applyHandler != nil {
		t.applyHandler()
	}
}

func (t *Toolbar) onResetClicked() {
	if t.resetHandler != nil {
		t.resetHandler()
	}
}

func (t *Toolbar) onReuploadClicked() {
	if t.reuploadHandler != nil {
		t.reuploadHandler()
	}
}

func (t *Toolbar) onExportClicked() {
	if t.exportHandler != nil {
		t.exportHandler()
	}
}

func (t *Toolbar) onSliderChanged(value float64) {
	v := int(value)
	t.thresholdLabel.SetText(ThresholdLabel(v))
	if t.thresholdHandler != nil {
		t.thresholdHandler(v)
	}
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}
