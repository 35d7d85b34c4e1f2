package timing

import (
	"context"
	"runtime"
	"time"

	"threshold-studio/internal/logger"
)

// Monitor logs memory and goroutine usage every interval until ctx is
// done. extra, if set, contributes further fields to each entry.
func Monitor(ctx context.Context, log logger.Logger, interval time.Duration, extra func() map[string]interface{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			log.Debug("Monitor", "performance metrics", Snapshot(extra))
		case <-ctx.Done():
			return
		}
	}
}

// Snapshot collects the fields logged by Monitor.
func Snapshot(extra func() map[string]interface{}) map[string]interface{} {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fields := map[string]interface{}{
		"go_memory_mb":      memStats.Alloc / 1024 / 1024,
		"go_total_alloc_mb": memStats.TotalAlloc / 1024 / 1024,
		"go_gc_runs":        memStats.NumGC,
		"goroutine_count":   runtime.NumGoroutine(),
	}
	if extra != nil {
		for k, v := range extra() {
			fields[k] = v
		}
	}
	return fields
}
