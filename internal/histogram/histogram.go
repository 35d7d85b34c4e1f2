// Package histogram counts pixels per grayscale intensity.
//
// A Histogram always has one bucket per possible intensity (0..255) and is
// recomputed from scratch on every call; nothing is patched incrementally.
package histogram

import (
	"fmt"

	"threshold-studio/internal/pixel"

	"golang.org/x/sync/errgroup"
)

// Buckets is the number of intensity buckets.
const Buckets = 256

// Histogram holds the pixel count for every intensity value.
type Histogram [Buckets]uint64

// Compute builds the intensity histogram of an RGBA8 pixel slice in a single
// pass. The slice must hold at least one whole pixel.
func Compute(pix []uint8) (Histogram, error) {
	var h Histogram
	if err := pixel.CheckPix(pix); err != nil {
		return h, fmt.Errorf("compute histogram: %w", err)
	}
	h.count(pix)
	return h, nil
}

// ComputeParallel returns the same histogram as Compute, splitting the pixels
// into contiguous spans counted by separate goroutines. Each goroutine owns
// its partial histogram; partials are summed once all of them finish.
// workers <= 0 uses GOMAXPROCS.
func ComputeParallel(pix []uint8, workers int) (Histogram, error) {
	var h Histogram
	if err := pixel.CheckPix(pix); err != nil {
		return h, fmt.Errorf("compute histogram: %w", err)
	}

	spans := pixel.Split(len(pix)/pixel.Channels, workers)
	if len(spans) == 1 {
		h.count(pix)
		return h, nil
	}

	partials := make([]Histogram, len(spans))
	var g errgroup.Group
	for i, span := range spans {
		i, span := i, span
		g.Go(func() error {
			start, end := span.Offsets()
			partials[i].count(pix[start:end])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return h, err
	}

	for i := range partials {
		h.Add(&partials[i])
	}
	return h, nil
}

func (h *Histogram) count(pix []uint8) {
	for i := 0; i+3 < len(pix); i += pixel.Channels {
		h[pixel.Intensity(pix[i], pix[i+1], pix[i+2])]++
	}
}

// Add merges other into h bucket by bucket.
func (h *Histogram) Add(other *Histogram) {
	for i := range h {
		h[i] += other[i]
	}
}

// Total returns the number of pixels counted.
func (h *Histogram) Total() uint64 {
	var total uint64
	for _, c := range h {
		total += c
	}
	return total
}

// Max returns the largest bucket count, used to scale charts.
func (h *Histogram) Max() uint64 {
	var m uint64
	for _, c := range h {
		m = max(m, c)
	}
	return m
}

// Populated returns the intensities whose bucket is non-zero, ascending.
func (h *Histogram) Populated() []int {
	var idx []int
	for i, c := range h {
		if c != 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// Equal reports whether both histograms hold the same counts.
func (h *Histogram) Equal(other *Histogram) bool {
	return *h == *other
}

// IsZero reports whether no pixel has been counted.
func (h *Histogram) IsZero() bool {
	return *h == Histogram{}
}
