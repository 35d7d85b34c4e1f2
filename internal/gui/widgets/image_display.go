package widgets

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 480
	ImageAreaHeight = 360

	UploadHint         = "Upload a file or drag and drop (PNG, JPG, GIF up to 10MB)"
	NoThresholdApplied = "No threshold applied"
)

// ImageDisplay shows the original image beside its thresholded version.
type ImageDisplay struct {
	container        fyne.CanvasObject
	originalImage    *canvas.Image
	thresholdedImage *canvas.Image
	originalHint     *widget.Label
	thresholdedHint  *widget.Label
	splitView        *container.Split
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.originalImage = canvas.NewImageFromImage(nil)
	id.originalImage.FillMode = canvas.ImageFillContain
	id.originalImage.ScaleMode = canvas.ImageScaleSmooth
	id.originalImage.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))

	// binarized pixels must stay crisp
	id.thresholdedImage = canvas.NewImageFromImage(nil)
	id.thresholdedImage.FillMode = canvas.ImageFillContain
	id.thresholdedImage.ScaleMode = canvas.ImageScalePixels
	id.thresholdedImage.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))

	id.originalHint = widget.NewLabel(UploadHint)
	id.originalHint.Alignment = fyne.TextAlignCenter
	id.originalHint.Wrapping = fyne.TextWrapWord

	id.thresholdedHint = widget.NewLabel(NoThresholdApplied)
	id.thresholdedHint.Alignment = fyne.TextAlignCenter
}

func (id *ImageDisplay) setupLayout() {
	originalContainer := container.NewBorder(
		widget.NewRichTextFromMarkdown("**Original**"),
		nil, nil, nil,
		container.NewStack(id.originalImage, container.NewCenter(id.originalHint)),
	)

	thresholdedContainer := container.NewBorder(
		widget.NewRichTextFromMarkdown("**Thresholded**"),
		nil, nil, nil,
		container.NewStack(id.thresholdedImage, container.NewCenter(id.thresholdedHint)),
	)

	id.splitView = container.NewHSplit(originalContainer, thresholdedContainer)
	id.splitView.SetOffset(0.5)
	id.container = id.splitView
}

func (id *ImageDisplay) GetContainer() fyne.CanvasObject {
	return id.container
}

// SetOriginalImage shows img, or the upload hint when img is nil.
func (id *ImageDisplay) SetOriginalImage(img image.Image) {
	id.originalImage.Image = img
	setHintVisible(id.originalHint, img == nil)
	id.originalImage.Refresh()
}

// SetThresholdedImage shows img, or the "No threshold applied" placeholder
// when img is nil.
func (id *ImageDisplay) SetThresholdedImage(img image.Image) {
	id.thresholdedImage.Image = img
	setHintVisible(id.thresholdedHint, img == nil)
	id.thresholdedImage.Refresh()
}

func (id *ImageDisplay) ThresholdedHintVisible() bool {
	return id.thresholdedHint.Visible()
}

func (id *ImageDisplay) OriginalHintVisible() bool {
	return id.originalHint.Visible()
}

func setHintVisible(hint *widget.Label, visible bool) {
	if visible {
		hint.Show()
	} else {
		hint.Hide()
	}
}
