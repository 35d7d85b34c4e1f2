// Package pixel defines the RGBA8 pixel buffer shared by the histogram and
// threshold packages, together with the intensity rule and the validation
// errors both of them report.
package pixel

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Channels is the number of bytes per pixel in a Buffer (R, G, B, A).
const Channels = 4

// MaxThreshold is the largest accepted threshold value.
const MaxThreshold = 255

var (
	// ErrInvalidBuffer is returned when a pixel slice is empty or its length
	// is not a multiple of Channels, or when it disagrees with the buffer's
	// declared dimensions.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")

	// ErrInvalidThreshold is returned for thresholds outside [0, MaxThreshold].
	ErrInvalidThreshold = errors.New("invalid threshold")
)

// Buffer is a row-major RGBA8 image with non-premultiplied alpha, laid out
// exactly like image.NRGBA.Pix for a zero-origin rectangle.
type Buffer struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewBuffer allocates a zeroed buffer of the given dimensions.
func NewBuffer(width, height int) (Buffer, error) {
	if width <= 0 || height <= 0 {
		return Buffer{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, width, height)
	}
	return Buffer{
		Pix:    make([]uint8, width*height*Channels),
		Width:  width,
		Height: height,
	}, nil
}

// Validate checks that the buffer holds at least one pixel and that its
// length matches Width*Height*Channels.
func (b Buffer) Validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, b.Width, b.Height)
	}
	if want := b.Width * b.Height * Channels; len(b.Pix) != want {
		return fmt.Errorf("%w: length %d, want %d for %dx%d",
			ErrInvalidBuffer, len(b.Pix), want, b.Width, b.Height)
	}
	return nil
}

// Len returns the number of pixels in the buffer.
func (b Buffer) Len() int {
	return len(b.Pix) / Channels
}

// Clone returns a deep copy of the buffer.
func (b Buffer) Clone() Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return Buffer{Pix: pix, Width: b.Width, Height: b.Height}
}

// Image wraps the buffer as an *image.NRGBA without copying.
func (b Buffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * Channels,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromImage converts any image into a Buffer. An *image.NRGBA with a
// zero origin and tight stride is copied directly; everything else goes
// through imaging.Clone, which normalizes to NRGBA.
func FromImage(img image.Image) (Buffer, error) {
	if img == nil {
		return Buffer{}, fmt.Errorf("%w: nil image", ErrInvalidBuffer)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return Buffer{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidBuffer, width, height)
	}

	if nrgba, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) && nrgba.Stride == width*Channels {
		n := width * height * Channels
		pix := make([]uint8, n)
		copy(pix, nrgba.Pix[:n])
		return Buffer{Pix: pix, Width: width, Height: height}, nil
	}

	dst := imaging.Clone(img)
	return Buffer{Pix: dst.Pix, Width: width, Height: height}, nil
}

// Intensity is the grayscale value used for histograms and thresholding:
// the mean of R, G and B rounded down. Alpha does not participate.
func Intensity(r, g, b uint8) uint8 {
	return uint8((uint16(r) + uint16(g) + uint16(b)) / 3)
}

// CheckPix validates a raw RGBA slice: it must be non-empty and a whole
// number of pixels long.
func CheckPix(pix []uint8) error {
	if len(pix) == 0 {
		return fmt.Errorf("%w: empty buffer", ErrInvalidBuffer)
	}
	if len(pix)%Channels != 0 {
		return fmt.Errorf("%w: length %d is not a multiple of %d", ErrInvalidBuffer, len(pix), Channels)
	}
	return nil
}

// CheckThreshold validates a threshold without clamping it.
func CheckThreshold(t int) error {
	if t < 0 || t > MaxThreshold {
		return fmt.Errorf("%w: %d outside [0,%d]", ErrInvalidThreshold, t, MaxThreshold)
	}
	return nil
}
