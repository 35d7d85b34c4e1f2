package pixel

import "runtime"

// minSpanPixels keeps tiny images on a single goroutine.
const minSpanPixels = 16 * 1024

// Span is a half-open range [Start, End) of pixel indices.
type Span struct {
	Start int
	End   int
}

// Offsets returns the byte range of the span inside a Pix slice.
func (s Span) Offsets() (int, int) {
	return s.Start * Channels, s.End * Channels
}

// Workers normalizes a requested worker count: values <= 0 mean GOMAXPROCS.
func Workers(n int) int {
	if n <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return n
}

// Split divides n pixels into at most workers contiguous spans of near-equal
// size. Inputs smaller than minSpanPixels per worker get fewer spans, and a
// single span when parallelism would not pay off.
func Split(n, workers int) []Span {
	if n <= 0 {
		return nil
	}

	workers = min(Workers(workers), n)
	if limit := n / minSpanPixels; workers > limit {
		workers = max(limit, 1)
	}
	if workers == 1 {
		return []Span{{Start: 0, End: n}}
	}

	chunk := (n + workers - 1) / workers
	spans := make([]Span, 0, workers)
	for start := 0; start < n; start += chunk {
		spans = append(spans, Span{Start: start, End: min(start+chunk, n)})
	}
	return spans
}
