package embed

import (
	"sync"
	"time"
)

type batchSample struct {
	timestamp time.Time
	chunks    int
	elapsed   time.Duration
}

// StatsSnapshot is a point-in-time aggregate of recent embedding batches.
type StatsSnapshot struct {
	Batches      int     `json:"batches"`
	Chunks       int     `json:"chunks"`
	AvgBatchMs   float64 `json:"avg_batch_ms"`
	ChunksPerSec float64 `json:"chunks_per_sec"`
}

// Stats tracks embedding throughput within a rolling window. It is an
// observability aid only; nothing in the pipeline keys off these numbers.
type Stats struct {
	mu      sync.Mutex
	samples []batchSample
	maxAge  time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]batchSample, 0, 64),
		maxAge:  maxAge,
	}
}

func (s *Stats) Record(chunks int, elapsed time.Duration) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, batchSample{
		timestamp: now,
		chunks:    chunks,
		elapsed:   elapsed,
	})
}

func (s *Stats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return StatsSnapshot{}
	}

	var chunks int
	var elapsed time.Duration
	for _, sm := range s.samples {
		chunks += sm.chunks
		elapsed += sm.elapsed
	}

	snap := StatsSnapshot{
		Batches:    len(s.samples),
		Chunks:     chunks,
		AvgBatchMs: float64(elapsed.Milliseconds()) / float64(len(s.samples)),
	}
	snap.ChunksPerSec = s.rate(chunks, elapsed)
	return snap
}

func (s *Stats) rate(chunks int, elapsed time.Duration) float64 {
	if elapsed <= 0 {
		return 0
	}
	return float64(chunks) / elapsed.Seconds()
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}
