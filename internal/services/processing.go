// Package services runs decoding, thresholding and export on behalf of the
// GUI and the command line.
package services

import (
	"context"
	"fmt"
	"sync"

	"threshold-studio/internal/histogram"
	"threshold-studio/internal/logger"
	"threshold-studio/internal/models"
	"threshold-studio/internal/pixel"
	"threshold-studio/internal/threshold"
	"threshold-studio/internal/timing"
)

const (
	opAnalyze = "analyze"
	opApply   = "apply_threshold"
)

// ProcessingService computes histograms and thresholded images for the
// session's image.
type ProcessingService struct {
	session *models.Session
	logger  logger.Logger
	timings *timing.Tracker
	slots   chan struct{}

	mu      sync.RWMutex
	workers int
	failed  int
}

// NewProcessingService creates a processing service. workers is the
// parallelism of each histogram/threshold pass: 0 uses every CPU, 1 runs
// sequentially.
func NewProcessingService(session *models.Session, log logger.Logger, timings *timing.Tracker, workers int) *ProcessingService {
	const concurrentJobs = 2
	slots := make(chan struct{}, concurrentJobs)
	for i := 0; i < concurrentJobs; i++ {
		slots <- struct{}{}
	}

	return &ProcessingService{
		session: session,
		logger:  log,
		timings: timings,
		slots:   slots,
		workers: workers,
	}
}

// Analyze makes img the session image and computes its original histogram.
// The previous image, if any, is replaced together with its result.
func (ps *ProcessingService) Analyze(ctx context.Context, img *models.ImageData) (histogram.Histogram, error) {
	if img == nil {
		return histogram.Histogram{}, models.ErrNoImage
	}
	if err := img.Buffer.Validate(); err != nil {
		return histogram.Histogram{}, fmt.Errorf("analyze %s: %w", img.Name, err)
	}

	release, err := ps.acquire(ctx)
	if err != nil {
		return histogram.Histogram{}, err
	}
	defer release()

	stop := ps.timings.Start(opAnalyze)
	h, err := histogram.ComputeParallel(img.Buffer.Pix, ps.GetWorkerCount())
	elapsed := stop()
	if err != nil {
		ps.recordFailure()
		return histogram.Histogram{}, fmt.Errorf("analyze %s: %w", img.Name, err)
	}

	if err := ctx.Err(); err != nil {
		return histogram.Histogram{}, err
	}

	ps.session.Load(img, h)

	ps.logger.Info("ProcessingService", "original histogram computed", map[string]interface{}{
		"name":        img.Name,
		"pixels":      h.Total(),
		"buckets":     len(h.Populated()),
		"duration_ms": elapsed.Milliseconds(),
	})

	return h, nil
}

// ApplyThreshold binarizes the session's original image at t. The original
// buffer is never modified, so repeated calls always start from the pristine
// pixels.
func (ps *ProcessingService) ApplyThreshold(ctx context.Context, t int) (*models.ThresholdResult, error) {
	if err := pixel.CheckThreshold(t); err != nil {
		return nil, err
	}

	img, revision, err := ps.session.Current()
	if err != nil {
		return nil, err
	}

	release, err := ps.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	stop := ps.timings.Start(opApply)
	out, h, err := threshold.ApplyBuffer(img.Buffer, t, ps.GetWorkerCount())
	elapsed := stop()
	if err != nil {
		ps.recordFailure()
		return nil, fmt.Errorf("threshold %s: %w", img.Name, err)
	}

	// a cancelled caller gets nothing, even though the work finished
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.ThresholdResult{
		Threshold:   t,
		Buffer:      out,
		Histogram:   h,
		ProcessTime: elapsed,
	}
	if err := ps.session.SetResult(revision, result); err != nil {
		return nil, err
	}

	ps.logger.Debug("ProcessingService", "threshold applied", map[string]interface{}{
		"name":        img.Name,
		"threshold":   t,
		"white":       result.White(),
		"black":       result.Black(),
		"duration_ms": elapsed.Milliseconds(),
	})

	return result, nil
}

// SelectThreshold records the threshold picked by the user. It is the value
// the next apply uses; results already computed are unaffected.
func (ps *ProcessingService) SelectThreshold(t int) error {
	if err := pixel.CheckThreshold(t); err != nil {
		return fmt.Errorf("select threshold: %w", err)
	}
	ps.session.SetThreshold(t)
	return nil
}

// SelectedThreshold returns the value last passed to SelectThreshold, or 0
// after a load, reset or clear.
func (ps *ProcessingService) SelectedThreshold() int {
	return ps.session.Threshold()
}

// Reset discards the thresholded result, keeping the original image.
func (ps *ProcessingService) Reset() {
	ps.session.Reset()
	ps.logger.Debug("ProcessingService", "result reset", nil)
}

// Clear discards the image entirely.
func (ps *ProcessingService) Clear() {
	ps.session.Clear()
	ps.logger.Debug("ProcessingService", "session cleared", nil)
}

// Snapshot returns the current session state.
func (ps *ProcessingService) Snapshot() models.Snapshot {
	return ps.session.Snapshot()
}

// ProcessingStats contains processing performance statistics
type ProcessingStats struct {
	Analyses   timing.Stats
	Thresholds timing.Stats
	Failed     int
	Workers    int
}

// GetProcessingStats returns processing performance statistics
func (ps *ProcessingService) GetProcessingStats() ProcessingStats {
	ps.mu.RLock()
	failed := ps.failed
	ps.mu.RUnlock()

	return ProcessingStats{
		Analyses:   ps.timings.Stats(opAnalyze),
		Thresholds: ps.timings.Stats(opApply),
		Failed:     failed,
		Workers:    ps.GetWorkerCount(),
	}
}

// SetWorkerCount updates the parallelism of later passes.
func (ps *ProcessingService) SetWorkerCount(count int) {
	if count < 0 {
		count = 0
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.workers = count
}

// GetWorkerCount returns the configured parallelism.
func (ps *ProcessingService) GetWorkerCount() int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.workers
}

// Shutdown releases all resources
func (ps *ProcessingService) Shutdown() {
	ps.session.Shutdown()
	ps.timings.Reset("")
}

func (ps *ProcessingService) acquire(ctx context.Context) (func(), error) {
	select {
	case <-ps.slots:
		return func() { ps.slots <- struct{}{} }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (ps *ProcessingService) recordFailure() {
	ps.mu.Lock()
	ps.failed++
	ps.mu.Unlock()
}
