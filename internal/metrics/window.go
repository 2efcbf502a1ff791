package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

const defaultWindowSize = 4096

// Window keeps the most recent duration samples for percentile reporting.
type Window struct {
	mu      sync.Mutex
	samples []float64 // milliseconds, ring buffer
	next    int
	full    bool
}

// NewWindow creates a window holding at most size samples.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = defaultWindowSize
	}
	return &Window{samples: make([]float64, size)}
}

// Record adds a sample, overwriting the oldest once the window is full.
func (w *Window) Record(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.samples[w.next] = float64(d.Microseconds()) / 1000.0
	w.next++
	if w.next == len(w.samples) {
		w.next = 0
		w.full = true
	}
}

// LatencyStats summarizes a window in milliseconds.
type LatencyStats struct {
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Count int     `json:"count"`
}

// Snapshot computes the current statistics.
func (w *Window) Snapshot() LatencyStats {
	w.mu.Lock()
	n := w.next
	if w.full {
		n = len(w.samples)
	}
	sorted := make([]float64, n)
	copy(sorted, w.samples[:n])
	w.mu.Unlock()

	if n == 0 {
		return LatencyStats{}
	}
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}

	return LatencyStats{
		Mean:  sum / float64(n),
		P50:   percentile(sorted, 50),
		P95:   percentile(sorted, 95),
		P99:   percentile(sorted, 99),
		Min:   sorted[0],
		Max:   sorted[n-1],
		Count: n,
	}
}

// Reset drops all samples.
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.next = 0
	w.full = false
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []float64, p float64) float64 {
	idx := (p / 100.0) * float64(len(sorted)-1)
	lo, hi := int(math.Floor(idx)), int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
