// Package chart draws intensity histograms as bar charts.
package chart

import (
	"image"
	"image/color"
	"strconv"

	"threshold-studio/internal/histogram"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Chart geometry. Each bucket is barWidth pixels wide.
const (
	barWidth     = 2
	marginLeft   = 48
	marginRight  = 12
	marginTop    = 28
	marginBottom = 24
	plotHeight   = 200

	Width  = marginLeft + histogram.Buckets*barWidth + marginRight
	Height = marginTop + plotHeight + marginBottom
)

// Style selects the title and colors of a chart.
type Style struct {
	Title  string
	Fill   color.NRGBA
	Border color.NRGBA
}

var (
	OriginalStyle = Style{
		Title:  "Original Histogram",
		Fill:   color.NRGBA{R: 54, G: 162, B: 235, A: 153},
		Border: color.NRGBA{R: 54, G: 162, B: 235, A: 255},
	}
	ModifiedStyle = Style{
		Title:  "Modified Histogram",
		Fill:   color.NRGBA{R: 255, G: 99, B: 132, A: 153},
		Border: color.NRGBA{R: 255, G: 99, B: 132, A: 255},
	}

	background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	axisColor  = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	textColor  = color.NRGBA{R: 60, G: 60, B: 60, A: 255}
)

// Render draws h as a Width x Height bar chart. Bars are scaled so the
// tallest bucket fills the plot; an empty histogram renders axes only.
func Render(h histogram.Histogram, style Style) *image.NRGBA {
	img := imaging.New(Width, Height, background)

	baseline := marginTop + plotHeight
	peak := h.Max()

	for i, count := range h {
		if count == 0 {
			continue
		}
		barHeight := BarHeight(count, peak)
		x := marginLeft + i*barWidth
		bar := image.Rect(x, baseline-barHeight, x+barWidth, baseline)
		draw.Draw(img, bar, image.NewUniform(style.Fill), image.Point{}, draw.Over)
		top := image.Rect(x, bar.Min.Y, x+barWidth, bar.Min.Y+1)
		draw.Draw(img, top, image.NewUniform(style.Border), image.Point{}, draw.Src)
	}

	// axes
	draw.Draw(img, image.Rect(marginLeft-1, marginTop, marginLeft, baseline+1), image.NewUniform(axisColor), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(marginLeft-1, baseline, Width-marginRight, baseline+1), image.NewUniform(axisColor), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	label(img, face, style.Title, (Width-textWidth(face, style.Title))/2, marginTop-10)
	label(img, face, strconv.FormatUint(peak, 10), 4, marginTop+10)
	label(img, face, "0", 4, baseline)
	for _, v := range []int{0, 128, 255} {
		s := strconv.Itoa(v)
		x := marginLeft + v*barWidth - textWidth(face, s)/2
		label(img, face, s, x, baseline+16)
	}

	return img
}

// BarHeight scales count against peak to the plot height. Any non-zero
// count gets at least one pixel so sparse buckets stay visible.
func BarHeight(count, peak uint64) int {
	if count == 0 || peak == 0 {
		return 0
	}
	h := int(count * plotHeight / peak)
	return max(h, 1)
}

func label(dst draw.Image, face font.Face, s string, x, y int) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func textWidth(face font.Face, s string) int {
	return font.MeasureString(face, s).Round()
}
