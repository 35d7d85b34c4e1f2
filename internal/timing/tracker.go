// Package timing records how long named operations take.
package timing

import (
	"sync"
	"time"

	"threshold-studio/internal/logger"
)

// Stats summarizes the recorded durations of one operation.
type Stats struct {
	Count   int
	Total   time.Duration
	Average time.Duration
	Last    time.Duration
}

type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	logger  logger.Logger
	now     func() time.Time
	limit   int
}

// NewTracker keeps at most limit samples per operation (limit <= 0 keeps 100).
// log may be nil.
func NewTracker(log logger.Logger, limit int) *Tracker {
	if limit <= 0 {
		limit = 100
	}
	return &Tracker{
		timings: make(map[string][]time.Duration),
		logger:  log,
		now:     time.Now,
		limit:   limit,
	}
}

// Start begins timing operation; calling the returned function records the
// elapsed time and returns it.
func (tt *Tracker) Start(operation string) func() time.Duration {
	start := tt.now()
	return func() time.Duration {
		duration := tt.now().Sub(start)
		tt.Record(operation, duration)
		return duration
	}
}

// Record stores a duration measured elsewhere.
func (tt *Tracker) Record(operation string, duration time.Duration) {
	tt.mu.Lock()
	samples := append(tt.timings[operation], duration)
	if len(samples) > tt.limit {
		samples = samples[len(samples)-tt.limit:]
	}
	tt.timings[operation] = samples
	tt.mu.Unlock()

	if tt.logger != nil {
		tt.logger.Debug("Timing", "operation completed", map[string]interface{}{
			"operation":   operation,
			"duration_ms": float64(duration.Microseconds()) / 1000,
		})
	}
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

// Stats returns the summary for operation; the zero Stats if nothing was recorded.
func (tt *Tracker) Stats(operation string) Stats {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return Stats{}
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return Stats{
		Count:   len(timings),
		Total:   total,
		Average: total / time.Duration(len(timings)),
		Last:    timings[len(timings)-1],
	}
}

// Reset forgets one operation, or everything when operation is empty.
func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
	} else {
		delete(tt.timings, operation)
	}
}
