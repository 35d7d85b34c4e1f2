package models

import (
	"testing"

	"threshold-studio/internal/histogram"
	"threshold-studio/internal/pixel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedSession(t *testing.T) (*Session, uint64) {
	t.Helper()

	img := &ImageData{
		Name:   "a.png",
		Format: "png",
		Buffer: pixel.Buffer{Pix: []uint8{50, 50, 50, 255, 200, 200, 200, 255}, Width: 2, Height: 1},
	}
	original, err := histogram.Compute(img.Buffer.Pix)
	require.NoError(t, err)

	s := NewSession()
	s.Load(img, original)

	_, rev, err := s.Current()
	require.NoError(t, err)
	return s, rev
}

func TestEmptySession(t *testing.T) {
	s := NewSession()

	_, rev, err := s.Current()
	assert.ErrorIs(t, err, ErrNoImage)
	assert.False(t, s.Snapshot().Loaded())
	assert.ErrorIs(t, s.SetResult(rev, &ThresholdResult{}), ErrNoImage)
}

func TestLoadAndResult(t *testing.T) {
	s, rev := loadedSession(t)

	snap := s.Snapshot()
	require.True(t, snap.Loaded())
	assert.Equal(t, uint64(1), snap.OriginalHistogram[50])
	assert.True(t, snap.ModifiedHistogram.IsZero())
	assert.Nil(t, snap.Result)

	var h histogram.Histogram
	h[0], h[255] = 1, 1
	s.SetThreshold(100)
	require.NoError(t, s.SetResult(rev, &ThresholdResult{Threshold: 100, Histogram: h}))

	snap = s.Snapshot()
	assert.Equal(t, 100, snap.Threshold)
	assert.Equal(t, 100, snap.Result.Threshold)
	assert.Equal(t, h, snap.ModifiedHistogram)
	assert.Equal(t, uint64(1), snap.Result.White())
	assert.Equal(t, uint64(1), snap.Result.Black())
}

func TestResetKeepsOriginal(t *testing.T) {
	s, rev := loadedSession(t)
	require.NoError(t, s.SetResult(rev, &ThresholdResult{Threshold: 100}))
	s.SetThreshold(120)

	s.Reset()

	snap := s.Snapshot()
	assert.True(t, snap.Loaded())
	assert.Equal(t, 0, snap.Threshold)
	assert.Nil(t, snap.Result)
	assert.True(t, snap.ModifiedHistogram.IsZero())
	assert.False(t, snap.OriginalHistogram.IsZero())
}

func TestClearForgetsEverything(t *testing.T) {
	s, rev := loadedSession(t)
	require.NoError(t, s.SetResult(rev, &ThresholdResult{Threshold: 5}))

	s.Clear()

	snap := s.Snapshot()
	assert.False(t, snap.Loaded())
	assert.True(t, snap.OriginalHistogram.IsZero())
	assert.True(t, snap.ModifiedHistogram.IsZero())
	assert.Zero(t, snap.Threshold)
}

func TestStaleResultIsRejected(t *testing.T) {
	s, rev := loadedSession(t)
	img := s.Snapshot().Image

	s.Load(&ImageData{Name: "b.png", Buffer: img.Buffer}, histogram.Histogram{})

	err := s.SetResult(rev, &ThresholdResult{Threshold: 9})
	assert.True(t, IsStale(err))
	assert.Nil(t, s.Snapshot().Result)
}

func TestResultComputedBeforeResetIsRejected(t *testing.T) {
	s, rev := loadedSession(t)

	s.Reset()

	err := s.SetResult(rev, &ThresholdResult{Threshold: 9})
	assert.True(t, IsStale(err))
	assert.Nil(t, s.Snapshot().Result)

	_, rev, err = s.Current()
	require.NoError(t, err)
	require.NoError(t, s.SetResult(rev, &ThresholdResult{Threshold: 9}))
	assert.NotNil(t, s.Snapshot().Result)
}

func TestResultComputedBeforeClearIsRejected(t *testing.T) {
	s, rev := loadedSession(t)

	s.Clear()
	assert.ErrorIs(t, s.SetResult(rev, &ThresholdResult{}), ErrNoImage)

	s.Load(&ImageData{Name: "d.png"}, histogram.Histogram{})
	assert.True(t, IsStale(s.SetResult(rev, &ThresholdResult{})))
}

func TestSetResultKeepsSelectedThreshold(t *testing.T) {
	s, rev := loadedSession(t)

	s.SetThreshold(42)
	require.NoError(t, s.SetResult(rev, &ThresholdResult{Threshold: 10}))

	assert.Equal(t, 42, s.Threshold())
	assert.Equal(t, 10, s.Snapshot().Result.Threshold)
}

func TestLoadReplacesPreviousResult(t *testing.T) {
	s, rev := loadedSession(t)
	require.NoError(t, s.SetResult(rev, &ThresholdResult{Threshold: 50}))

	s.Load(&ImageData{Name: "c.png"}, histogram.Histogram{})

	snap := s.Snapshot()
	assert.Nil(t, snap.Result)
	assert.Equal(t, "c.png", snap.Image.Name)
	assert.Zero(t, snap.Threshold)
}
