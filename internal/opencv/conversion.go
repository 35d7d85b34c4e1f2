// Package opencv bridges gocv Mats and RGBA pixel buffers, and offers an
// OpenCV-backed image decoder.
package opencv

import (
	"fmt"

	"threshold-studio/internal/pixel"

	"gocv.io/x/gocv"
)

// ToBuffer converts a Mat of 1, 3 or 4 channels (gray, BGR, BGRA) into an
// RGBA buffer. 16-bit Mats are scaled down to 8 bits. mat is left untouched.
func ToBuffer(mat gocv.Mat) (pixel.Buffer, error) {
	if err := ValidateMat(mat, "Mat to buffer"); err != nil {
		return pixel.Buffer{}, err
	}

	src := mat
	target, ok := eightBit(mat.Type())
	if !ok {
		return pixel.Buffer{}, fmt.Errorf("unsupported Mat type %v", mat.Type())
	}
	if target != mat.Type() {
		scaled := gocv.NewMat()
		defer scaled.Close()
		mat.ConvertToWithParams(&scaled, target, 1.0/257, 0)
		src = scaled
	}

	code, err := rgbaConversion(src.Channels())
	if err != nil {
		return pixel.Buffer{}, err
	}

	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(src, &rgba, code)

	buf := pixel.Buffer{
		Pix:    rgba.ToBytes(),
		Width:  rgba.Cols(),
		Height: rgba.Rows(),
	}
	if err := buf.Validate(); err != nil {
		return pixel.Buffer{}, fmt.Errorf("Mat to buffer: %w", err)
	}
	return buf, nil
}

// FromBuffer copies buf into a new 8-bit BGRA Mat. The caller must Close it.
func FromBuffer(buf pixel.Buffer) (gocv.Mat, error) {
	if err := buf.Validate(); err != nil {
		return gocv.Mat{}, fmt.Errorf("buffer to Mat: %w", err)
	}

	rgba, err := gocv.NewMatFromBytes(buf.Height, buf.Width, gocv.MatTypeCV8UC4, buf.Pix)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("buffer to Mat: %w", err)
	}
	defer rgba.Close()

	bgra := gocv.NewMat()
	gocv.CvtColor(rgba, &bgra, gocv.ColorRGBAToBGRA)
	if bgra.Empty() {
		bgra.Close()
		return gocv.Mat{}, fmt.Errorf("buffer to Mat: color conversion failed")
	}
	return bgra, nil
}
