package opencv

import (
	"fmt"
	"strings"

	"threshold-studio/internal/pixel"

	"gocv.io/x/gocv"
)

// Decoder decodes and encodes images with OpenCV's imgcodecs. Decode reports
// no format name; callers fall back to the file extension.
type Decoder struct{}

func NewDecoder() Decoder {
	return Decoder{}
}

func (Decoder) Decode(data []byte) (pixel.Buffer, string, error) {
	if len(data) == 0 {
		return pixel.Buffer{}, "", fmt.Errorf("failed to decode image: no data")
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return pixel.Buffer{}, "", fmt.Errorf("failed to decode image: %w", err)
	}
	defer mat.Close()

	if mat.Empty() {
		return pixel.Buffer{}, "", fmt.Errorf("failed to decode image: unrecognized data")
	}

	buf, err := ToBuffer(mat)
	if err != nil {
		return pixel.Buffer{}, "", err
	}
	return buf, "", nil
}

// Encode writes buf in the given format ("png", "jpg", "bmp", "tiff", ...).
// quality applies to JPEG only.
func (Decoder) Encode(format string, buf pixel.Buffer, quality int) ([]byte, error) {
	mat, err := FromBuffer(buf)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	ext := gocv.FileExt("." + strings.TrimPrefix(strings.ToLower(format), "."))
	params := []int{int(gocv.IMWriteJpegQuality), quality}

	nb, err := gocv.IMEncodeWithParams(ext, mat, params)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	defer nb.Close()

	return append([]byte(nil), nb.GetBytes()...), nil
}
