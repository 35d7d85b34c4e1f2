package widgets

import (
	"image"

	"threshold-studio/internal/chart"
	"threshold-studio/internal/histogram"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

// HistogramPanel shows the original and modified histogram charts.
type HistogramPanel struct {
	container *fyne.Container
	original  *canvas.Image
	modified  *canvas.Image
}

func NewHistogramPanel() *HistogramPanel {
	hp := &HistogramPanel{
		original: newChartImage(),
		modified: newChartImage(),
	}
	hp.container = container.NewGridWithColumns(2, hp.original, hp.modified)
	hp.SetHistograms(histogram.Histogram{}, histogram.Histogram{})
	return hp
}

func newChartImage() *canvas.Image {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	img.SetMinSize(fyne.NewSize(chart.Width/2, chart.Height/2))
	return img
}

func (hp *HistogramPanel) GetContainer() *fyne.Container {
	return hp.container
}

// SetHistograms redraws both charts. A zero histogram draws empty axes.
func (hp *HistogramPanel) SetHistograms(original, modified histogram.Histogram) {
	hp.setChart(hp.original, chart.Render(original, chart.OriginalStyle))
	hp.setChart(hp.modified, chart.Render(modified, chart.ModifiedStyle))
}

func (hp *HistogramPanel) setChart(dst *canvas.Image, img image.Image) {
	dst.Image = img
	dst.Refresh()
}

func (hp *HistogramPanel) OriginalChart() image.Image {
	return hp.original.Image
}

func (hp *HistogramPanel) ModifiedChart() image.Image {
	return hp.modified.Image
}
