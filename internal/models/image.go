package models

import (
	"time"

	"threshold-studio/internal/histogram"
	"threshold-studio/internal/pixel"
)

// ImageData is a decoded upload.
type ImageData struct {
	Name     string
	Format   string
	Buffer   pixel.Buffer
	FileSize int64
	LoadTime time.Time
}

// ThresholdResult is the outcome of one apply action.
type ThresholdResult struct {
	Threshold   int
	Buffer      pixel.Buffer
	Histogram   histogram.Histogram
	ProcessTime time.Duration
}

// White returns the number of pixels classified white.
func (r *ThresholdResult) White() uint64 { return r.Histogram[histogram.Buckets-1] }

// Black returns the number of pixels classified black.
func (r *ThresholdResult) Black() uint64 { return r.Histogram[0] }
