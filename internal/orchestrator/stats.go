package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
)

// RunStats tracks counters for a single run. Counter fields are atomic
// so the pipelined mode's stages can update them concurrently.
type RunStats struct {
	BatchesStarted   atomic.Int64
	BatchesSucceeded atomic.Int64
	BatchesFailed    atomic.Int64
	BatchesSkipped   atomic.Int64
	RowsEncoded      atomic.Int64
	BytesEncoded     atomic.Int64
	BytesUploaded    atomic.Int64
	UploadAttempts   atomic.Int64

	mu          sync.Mutex
	uploadTimes *ddsketch.DDSketch
}

// NewRunStats creates a stats collector with an upload latency sketch.
func NewRunStats() *RunStats {
	sketch, err := ddsketch.NewDefaultDDSketch(0.01)
	if err != nil {
		// Only reachable with an invalid relative accuracy, and 0.01
		// is valid. Fall back to counters without latency quantiles.
		return &RunStats{}
	}
	return &RunStats{uploadTimes: sketch}
}

// ObserveUpload records one upload attempt duration.
func (s *RunStats) ObserveUpload(d time.Duration) {
	s.UploadAttempts.Add(1)
	if s.uploadTimes == nil {
		return
	}
	s.mu.Lock()
	s.uploadTimes.Add(float64(d.Milliseconds()))
	s.mu.Unlock()
}

// UploadQuantiles returns p50/p95/p99 upload latency in milliseconds.
// ok is false when no uploads were observed.
func (s *RunStats) UploadQuantiles() (p50, p95, p99 float64, ok bool) {
	if s.uploadTimes == nil {
		return 0, 0, 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uploadTimes.GetCount() == 0 {
		return 0, 0, 0, false
	}
	p50, err1 := s.uploadTimes.GetValueAtQuantile(0.50)
	p95, err2 := s.uploadTimes.GetValueAtQuantile(0.95)
	p99, err3 := s.uploadTimes.GetValueAtQuantile(0.99)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return p50, p95, p99, true
}
