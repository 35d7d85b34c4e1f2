package chart

import (
	"image"
	"testing"

	"threshold-studio/internal/histogram"

	"github.com/stretchr/testify/assert"
)

func TestBarHeight(t *testing.T) {
	tests := []struct {
		name        string
		count, peak uint64
		want        int
	}{
		{"empty", 0, 0, 0},
		{"zero bucket", 0, 10, 0},
		{"peak", 10, 10, plotHeight},
		{"half", 5, 10, plotHeight / 2},
		{"tiny stays visible", 1, 1_000_000, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BarHeight(tc.count, tc.peak))
		})
	}
}

func TestRenderSize(t *testing.T) {
	img := Render(histogram.Histogram{}, OriginalStyle)
	assert.Equal(t, image.Rect(0, 0, Width, Height), img.Bounds())
}

func TestRenderDrawsBarsInStyleColor(t *testing.T) {
	var h histogram.Histogram
	h[0] = 4
	h[255] = 2

	img := Render(h, ModifiedStyle)
	baseline := marginTop + plotHeight

	// the tallest bar reaches the top of the plot with the border color
	assert.Equal(t, ModifiedStyle.Border, img.NRGBAAt(marginLeft, marginTop))

	// the half-height bar at 255 is filled just above the baseline
	x := marginLeft + 255*barWidth
	inside := img.NRGBAAt(x, baseline-2)
	assert.Equal(t, uint8(255), inside.A)
	assert.Greater(t, inside.R, inside.G)

	// an empty bucket leaves the background untouched
	assert.Equal(t, background, img.NRGBAAt(marginLeft+100*barWidth, baseline-2))
}

func TestStylesDiffer(t *testing.T) {
	var h histogram.Histogram
	h[128] = 1

	a := Render(h, OriginalStyle)
	b := Render(h, ModifiedStyle)
	assert.NotEqual(t, a.Pix, b.Pix)
}
