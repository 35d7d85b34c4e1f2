package opencv

import (
	"fmt"

	"threshold-studio/internal/pixel"

	"gocv.io/x/gocv"
)

// maxSide bounds either image dimension accepted from OpenCV.
const maxSide = 32768

// ValidateMat checks that mat can take part in operation.
func ValidateMat(mat gocv.Mat, operation string) error {
	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}
	return ValidateDimensions(mat.Cols(), mat.Rows(), operation)
}

func ValidateDimensions(width, height int, operation string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d for operation: %s: %w", width, height, operation, pixel.ErrInvalidBuffer)
	}

	if width > maxSide || height > maxSide {
		return fmt.Errorf("dimensions %dx%d exceed maximum size for operation: %s", width, height, operation)
	}

	return nil
}

// rgbaConversion returns the CvtColor code that turns an 8-bit Mat with the
// given channel count into RGBA.
func rgbaConversion(channels int) (gocv.ColorConversionCode, error) {
	switch channels {
	case 1:
		return gocv.ColorGrayToRGBA, nil
	case 3:
		return gocv.ColorBGRToRGBA, nil
	case 4:
		return gocv.ColorBGRAToRGBA, nil
	default:
		return 0, fmt.Errorf("unsupported channel count %d", channels)
	}
}

// eightBit maps 16-bit Mat types to their 8-bit counterpart.
func eightBit(mt gocv.MatType) (gocv.MatType, bool) {
	switch mt {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
		return mt, true
	case gocv.MatTypeCV16UC1:
		return gocv.MatTypeCV8UC1, true
	case gocv.MatTypeCV16UC3:
		return gocv.MatTypeCV8UC3, true
	case gocv.MatTypeCV16UC4:
		return gocv.MatTypeCV8UC4, true
	default:
		return mt, false
	}
}
