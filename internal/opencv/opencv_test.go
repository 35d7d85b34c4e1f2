package opencv

import (
	"testing"

	"threshold-studio/internal/histogram"
	"threshold-studio/internal/pixel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func sampleBuffer() pixel.Buffer {
	return pixel.Buffer{
		Pix: []uint8{
			10, 20, 30, 255, 200, 100, 50, 128,
			0, 0, 0, 0, 255, 255, 255, 255,
		},
		Width:  2,
		Height: 2,
	}
}

func TestBufferMatRoundTrip(t *testing.T) {
	buf := sampleBuffer()

	mat, err := FromBuffer(buf)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 2, mat.Rows())
	assert.Equal(t, 2, mat.Cols())
	assert.Equal(t, 4, mat.Channels())
	// stored as BGRA
	assert.Equal(t, uint8(30), mat.GetUCharAt3(0, 0, 0))
	assert.Equal(t, uint8(10), mat.GetUCharAt3(0, 0, 2))

	back, err := ToBuffer(mat)
	require.NoError(t, err)
	assert.Equal(t, buf, back)
}

func TestToBufferGray(t *testing.T) {
	gray, err := gocv.NewMatFromBytes(1, 3, gocv.MatTypeCV8UC1, []byte{0, 128, 255})
	require.NoError(t, err)
	defer gray.Close()

	buf, err := ToBuffer(gray)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 255, 128, 128, 128, 255, 255, 255, 255, 255}, buf.Pix)

	h, err := histogram.Compute(buf.Pix)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 128, 255}, h.Populated())
}

func TestToBufferRejectsEmptyMat(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	_, err := ToBuffer(empty)
	assert.Error(t, err)
}

func TestFromBufferRejectsInvalidBuffer(t *testing.T) {
	_, err := FromBuffer(pixel.Buffer{Pix: make([]uint8, 7), Width: 2, Height: 1})
	assert.ErrorIs(t, err, pixel.ErrInvalidBuffer)
}

func TestDecoderPNGRoundTrip(t *testing.T) {
	buf := sampleBuffer()

	data, err := NewDecoder().Encode("png", buf, 95)
	require.NoError(t, err)

	got, format, err := NewDecoder().Decode(data)
	require.NoError(t, err)
	assert.Empty(t, format)
	assert.Equal(t, buf, got)
}

func TestEncodeJPEGQuality(t *testing.T) {
	buf, err := pixel.NewBuffer(32, 32)
	require.NoError(t, err)
	for i := range buf.Pix {
		buf.Pix[i] = uint8(i * 37)
	}

	low, err := NewDecoder().Encode("jpg", buf, 20)
	require.NoError(t, err)
	high, err := NewDecoder().Encode(".JPEG", buf, 95)
	require.NoError(t, err)
	assert.Less(t, len(low), len(high))

	got, _, err := NewDecoder().Decode(high)
	require.NoError(t, err)
	assert.Equal(t, 32, got.Width)
	assert.Equal(t, 32, got.Height)
}

func TestDecoderRejectsGarbage(t *testing.T) {
	_, _, err := NewDecoder().Decode([]byte("definitely not an image"))
	assert.Error(t, err)

	_, _, err = NewDecoder().Decode(nil)
	assert.Error(t, err)
}

func TestValidateDimensions(t *testing.T) {
	assert.NoError(t, ValidateDimensions(640, 480, "test"))
	assert.ErrorIs(t, ValidateDimensions(0, 10, "test"), pixel.ErrInvalidBuffer)
	assert.Error(t, ValidateDimensions(maxSide+1, 1, "test"))
}
