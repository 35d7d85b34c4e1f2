package threshold

import (
	"math/rand"
	"testing"

	"threshold-studio/internal/histogram"
	"threshold-studio/internal/pixel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPix(seed int64, pixels int) []uint8 {
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint8, pixels*pixel.Channels)
	rng.Read(pix)
	return pix
}

func TestApplyTwoPixelImage(t *testing.T) {
	pix := []uint8{
		50, 50, 50, 255,
		200, 200, 200, 255,
	}

	res, err := Apply(pix, 100)
	require.NoError(t, err)

	assert.Equal(t, []uint8{0, 0, 0, 255, 255, 255, 255, 255}, res.Pix)
	assert.Equal(t, uint64(1), res.Histogram[0])
	assert.Equal(t, uint64(1), res.Histogram[255])
	assert.Equal(t, []int{0, 255}, res.Histogram.Populated())
	assert.Equal(t, uint64(1), res.White())
	assert.Equal(t, uint64(1), res.Black())
}

func TestApplyZeroThresholdMakesTransparentBlackWhite(t *testing.T) {
	res, err := Apply([]uint8{0, 0, 0, 0}, 0)
	require.NoError(t, err)

	assert.Equal(t, []uint8{255, 255, 255, 0}, res.Pix)
	assert.Equal(t, uint64(1), res.Histogram[255])
	assert.Equal(t, uint64(1), res.Histogram.Total())
}

func TestApplyTieIsWhite(t *testing.T) {
	res, err := Apply([]uint8{100, 100, 100, 255}, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.White())

	res, err = Apply([]uint8{100, 100, 100, 255}, 101)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Black())
}

func TestApplyUsesFlooredIntensity(t *testing.T) {
	// Mean 100.67 floors to 100: white at 100, black at 101.
	pix := []uint8{101, 101, 100, 255}

	res, err := Apply(pix, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.White())

	res, err = Apply(pix, 101)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Black())
}

func TestApplyUniformImage(t *testing.T) {
	pix := make([]uint8, 0, 16*pixel.Channels)
	for i := 0; i < 16; i++ {
		pix = append(pix, 128, 128, 128, 255)
	}

	original, err := histogram.Compute(pix)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), original[128])
	assert.Equal(t, []int{128}, original.Populated())

	res, err := Apply(pix, 128)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), res.Histogram[255])
	assert.Equal(t, []int{255}, res.Histogram.Populated())
	for i := 0; i < len(res.Pix); i += pixel.Channels {
		assert.Equal(t, []uint8{255, 255, 255, 255}, res.Pix[i:i+4])
	}
}

func TestApplyRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		pix  []uint8
		t    int
		want error
	}{
		{"empty buffer", nil, 10, pixel.ErrInvalidBuffer},
		{"zero length", []uint8{}, 10, pixel.ErrInvalidBuffer},
		{"partial pixel", []uint8{1, 2, 3}, 10, pixel.ErrInvalidBuffer},
		{"trailing bytes", []uint8{1, 2, 3, 4, 5}, 10, pixel.ErrInvalidBuffer},
		{"threshold 256", []uint8{1, 2, 3, 4}, 256, pixel.ErrInvalidThreshold},
		{"negative threshold", []uint8{1, 2, 3, 4}, -1, pixel.ErrInvalidThreshold},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Apply(tc.pix, tc.t)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, res.Pix)
			assert.True(t, res.Histogram.IsZero())

			res, err = ApplyParallel(tc.pix, tc.t, 4)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, res.Pix)
		})
	}
}

func TestApplyBoundaryThresholds(t *testing.T) {
	pix := randomPix(3, 5000)
	// guarantee a few pure white pixels
	copy(pix[0:], []uint8{255, 255, 255, 7, 255, 255, 255, 9})

	all, err := Apply(pix, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), all.White())
	assert.Zero(t, all.Black())

	top, err := Apply(pix, 255)
	require.NoError(t, err)
	var maxed uint64
	for i := 0; i < len(pix); i += pixel.Channels {
		if pixel.Intensity(pix[i], pix[i+1], pix[i+2]) == 255 {
			maxed++
		}
	}
	assert.Equal(t, maxed, top.White())
	assert.GreaterOrEqual(t, top.White(), uint64(2))
}

func TestApplyOutputProperties(t *testing.T) {
	pix := randomPix(99, 4096)
	for _, th := range []int{0, 1, 64, 127, 128, 200, 254, 255} {
		res, err := Apply(pix, th)
		require.NoError(t, err)

		assert.Equal(t, uint64(4096), res.Histogram.Total())
		for _, b := range res.Histogram.Populated() {
			assert.Contains(t, []int{0, 255}, b)
		}

		for i := 0; i < len(pix); i += pixel.Channels {
			r, g, b := res.Pix[i], res.Pix[i+1], res.Pix[i+2]
			require.True(t, r == g && g == b && (r == 0 || r == 255), "pixel %d not binary", i/4)
			require.Equal(t, pix[i+3], res.Pix[i+3], "alpha must pass through")
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	pix := randomPix(5, 2048)
	before := append([]uint8(nil), pix...)

	_, err := Apply(pix, 90)
	require.NoError(t, err)
	_, err = ApplyParallel(pix, 90, 3)
	require.NoError(t, err)

	assert.Equal(t, before, pix)
}

func TestApplyIsIdempotent(t *testing.T) {
	pix := randomPix(21, 3000)
	for _, th := range []int{0, 50, 128, 255} {
		first, err := Apply(pix, th)
		require.NoError(t, err)
		second, err := Apply(first.Pix, th)
		require.NoError(t, err)

		assert.Equal(t, first.Pix, second.Pix, "threshold %d", th)
		assert.Equal(t, first.Histogram, second.Histogram, "threshold %d", th)
	}
}

func TestWhiteCountIsMonotonic(t *testing.T) {
	pix := randomPix(8, 10000)
	prev := uint64(10000) + 1
	for th := 0; th <= pixel.MaxThreshold; th++ {
		res, err := Apply(pix, th)
		require.NoError(t, err)
		require.LessOrEqual(t, res.White(), prev, "threshold %d", th)
		prev = res.White()
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	pix := randomPix(13, 1024)
	a, err := Apply(pix, 77)
	require.NoError(t, err)
	b, err := Apply(pix, 77)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestApplyParallelMatchesSequential(t *testing.T) {
	pix := randomPix(17, 640*480)
	for _, th := range []int{0, 100, 255} {
		want, err := Apply(pix, th)
		require.NoError(t, err)

		for _, workers := range []int{0, 1, 2, 5, 16} {
			got, err := ApplyParallel(pix, th, workers)
			require.NoError(t, err)
			assert.Equal(t, want.Histogram, got.Histogram, "threshold %d workers %d", th, workers)
			assert.Equal(t, want.Pix, got.Pix, "threshold %d workers %d", th, workers)
		}
	}
}

func TestApplyBuffer(t *testing.T) {
	buf := pixel.Buffer{Pix: randomPix(4, 12), Width: 4, Height: 3}

	for _, workers := range []int{1, 0} {
		out, h, err := ApplyBuffer(buf, 128, workers)
		require.NoError(t, err)
		assert.Equal(t, buf.Width, out.Width)
		assert.Equal(t, buf.Height, out.Height)
		assert.NoError(t, out.Validate())
		assert.Equal(t, uint64(12), h.Total())
	}

	_, _, err := ApplyBuffer(pixel.Buffer{Pix: make([]uint8, 8), Width: 3, Height: 1}, 10, 1)
	assert.ErrorIs(t, err, pixel.ErrInvalidBuffer)

	_, _, err = ApplyBuffer(buf, 300, 1)
	assert.ErrorIs(t, err, pixel.ErrInvalidThreshold)
}

func BenchmarkApply(b *testing.B) {
	pix := randomPix(1, 1920*1080)
	b.SetBytes(int64(len(pix)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Apply(pix, 128); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkApplyParallel(b *testing.B) {
	pix := randomPix(1, 1920*1080)
	b.SetBytes(int64(len(pix)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ApplyParallel(pix, 128, 0); err != nil {
			b.Fatal(err)
		}
	}
}
