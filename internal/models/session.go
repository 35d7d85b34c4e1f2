// Package models holds the state of the single image being worked on.
package models

import (
	"errors"
	"sync"

	"threshold-studio/internal/histogram"
)

// ErrNoImage is returned when an operation needs an image and none is loaded.
var ErrNoImage = errors.New("no image loaded")

// Snapshot is a consistent copy of the session state. Buffers are shared
// with the session and must be treated as read-only.
type Snapshot struct {
	Image             *ImageData
	Threshold         int
	OriginalHistogram histogram.Histogram
	ModifiedHistogram histogram.Histogram
	Result            *ThresholdResult
}

// Loaded reports whether an image is present.
func (s Snapshot) Loaded() bool { return s.Image != nil }

// Session holds at most one image: its decoded pixels, the histogram of the
// original, and the result of the latest apply. Every value is replaced
// wholesale; nothing is merged.
//
// The revision advances on Load, Reset and Clear. A result computed against
// an older revision is refused.
type Session struct {
	mu                sync.RWMutex
	revision          uint64
	image             *ImageData
	threshold         int
	originalHistogram histogram.Histogram
	result            *ThresholdResult
}

func NewSession() *Session {
	return &Session{}
}

// Load installs a new image and its histogram, dropping any previous result
// and returning the threshold to zero.
func (s *Session) Load(img *ImageData, original histogram.Histogram) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revision++
	s.image = img
	s.originalHistogram = original
	s.threshold = 0
	s.result = nil
}

// Current returns the loaded image with the revision it belongs to, or
// ErrNoImage.
func (s *Session) Current() (*ImageData, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.image == nil {
		return nil, s.revision, ErrNoImage
	}
	return s.image, s.revision, nil
}

// SetThreshold records the value currently selected by the user.
func (s *Session) SetThreshold(t int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threshold = t
}

// Threshold returns the selected threshold.
func (s *Session) Threshold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// SetResult stores the latest apply outcome. It fails with a stale error when
// the session was loaded, reset or cleared after revision was read, so a slow
// apply cannot overwrite newer state. The selected threshold is left alone.
func (s *Session) SetResult(revision uint64, result *ThresholdResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.image == nil {
		return ErrNoImage
	}
	if s.revision != revision {
		return errStale
	}
	s.result = result
	return nil
}

// Reset drops the binarized image and modified histogram and returns the
// threshold to zero. The original image stays loaded.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revision++
	s.threshold = 0
	s.result = nil
}

// Clear forgets everything, ready for a new upload.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revision++
	s.image = nil
	s.originalHistogram = histogram.Histogram{}
	s.threshold = 0
	s.result = nil
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Image:             s.image,
		Threshold:         s.threshold,
		OriginalHistogram: s.originalHistogram,
		Result:            s.result,
	}
	if s.result != nil {
		snap.ModifiedHistogram = s.result.Histogram
	}
	return snap
}

// Shutdown releases the held image.
func (s *Session) Shutdown() {
	s.Clear()
}

var errStale = errors.New("result belongs to a replaced session state")

// IsStale reports whether err was returned because the session changed while
// a result was being computed.
func IsStale(err error) bool {
	return errors.Is(err, errStale)
}
