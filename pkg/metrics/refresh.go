package metrics

import (
	"sync"
	"time"
)

// RefreshStats captures counters for weekly report fetches.
type RefreshStats struct {
	Attempts       int64     `json:"attempts"`
	Failures       int64     `json:"failures"`
	LastDurationMs int64     `json:"lastDurationMs"`
	LastSuccessAt  time.Time `json:"lastSuccessAt"`
	LastFailureAt  time.Time `json:"lastFailureAt"`
}

// IsZero reports whether no fetch has been observed yet.
func (s RefreshStats) IsZero() bool {
	return s.Attempts == 0
}

// RefreshRecorder accumulates RefreshStats; safe for concurrent use.
type RefreshRecorder struct {
	mu    sync.Mutex
	stats RefreshStats
}

// Observe records the outcome of one fetch that finished at the given time.
func (r *RefreshRecorder) Observe(duration time.Duration, err error, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.Attempts++
	r.stats.LastDurationMs = duration.Milliseconds()
	if err != nil {
		r.stats.Failures++
		r.stats.LastFailureAt = at
		return
	}
	r.stats.LastSuccessAt = at
}

// Snapshot returns a copy of the current counters.
func (r *RefreshRecorder) Snapshot() RefreshStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
