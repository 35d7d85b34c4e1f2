// Package threshold binarizes RGBA8 images against a fixed intensity cutoff.
//
// A pixel whose intensity is greater than or equal to the threshold becomes
// white, every other pixel becomes black, and alpha is carried over. The
// histogram of the result is collected in the same pass, so only buckets 0
// and 255 are ever populated.
package threshold

import (
	"fmt"

	"threshold-studio/internal/histogram"
	"threshold-studio/internal/pixel"

	"golang.org/x/sync/errgroup"
)

const (
	black = 0
	white = 255
)

// Result is a binarized pixel slice and its histogram.
type Result struct {
	Pix       []uint8
	Histogram histogram.Histogram
}

// White returns the number of pixels classified white.
func (r *Result) White() uint64 { return r.Histogram[white] }

// Black returns the number of pixels classified black.
func (r *Result) Black() uint64 { return r.Histogram[black] }

// Apply binarizes pix against t and returns a newly allocated slice; pix is
// never modified. t must lie in [0, 255].
func Apply(pix []uint8, t int) (Result, error) {
	if err := validate(pix, t); err != nil {
		return Result{}, err
	}

	res := Result{Pix: make([]uint8, len(pix))}
	binarize(res.Pix, pix, uint8(t), &res.Histogram)
	return res, nil
}

// ApplyParallel is Apply with the pixels split across goroutines. Every
// goroutine writes a disjoint range of the output and fills its own partial
// histogram. workers <= 0 uses GOMAXPROCS.
func ApplyParallel(pix []uint8, t, workers int) (Result, error) {
	if err := validate(pix, t); err != nil {
		return Result{}, err
	}

	res := Result{Pix: make([]uint8, len(pix))}
	spans := pixel.Split(len(pix)/pixel.Channels, workers)
	if len(spans) == 1 {
		binarize(res.Pix, pix, uint8(t), &res.Histogram)
		return res, nil
	}

	partials := make([]histogram.Histogram, len(spans))
	var g errgroup.Group
	for i, span := range spans {
		i, span := i, span
		g.Go(func() error {
			start, end := span.Offsets()
			binarize(res.Pix[start:end], pix[start:end], uint8(t), &partials[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	for i := range partials {
		res.Histogram.Add(&partials[i])
	}
	return res, nil
}

// ApplyBuffer binarizes a dimensioned buffer. The returned buffer has the
// same width and height as buf. workers follows ApplyParallel; 1 runs
// sequentially.
func ApplyBuffer(buf pixel.Buffer, t, workers int) (pixel.Buffer, histogram.Histogram, error) {
	if err := buf.Validate(); err != nil {
		return pixel.Buffer{}, histogram.Histogram{}, fmt.Errorf("apply threshold: %w", err)
	}

	var (
		res Result
		err error
	)
	if workers == 1 {
		res, err = Apply(buf.Pix, t)
	} else {
		res, err = ApplyParallel(buf.Pix, t, workers)
	}
	if err != nil {
		return pixel.Buffer{}, histogram.Histogram{}, err
	}

	out := pixel.Buffer{Pix: res.Pix, Width: buf.Width, Height: buf.Height}
	return out, res.Histogram, nil
}

func validate(pix []uint8, t int) error {
	if err := pixel.CheckPix(pix); err != nil {
		return fmt.Errorf("apply threshold: %w", err)
	}
	if err := pixel.CheckThreshold(t); err != nil {
		return fmt.Errorf("apply threshold: %w", err)
	}
	return nil
}

// binarize writes the thresholded form of src into dst and counts the
// classification into h. dst and src have equal length.
func binarize(dst, src []uint8, t uint8, h *histogram.Histogram) {
	for i := 0; i+3 < len(src); i += pixel.Channels {
		var v uint8 = black
		if pixel.Intensity(src[i], src[i+1], src[i+2]) >= t {
			v = white
		}
		dst[i], dst[i+1], dst[i+2] = v, v, v
		dst[i+3] = src[i+3]
		h[v]++
	}
}
