package fetcher

import "sync"

// Costs are seconds of wall-clock producer time.
const (
	// untriedCost ranks never-executed producers ahead of anything
	// with real history, so the engine gathers data eagerly.
	untriedCost = 1e-9
	// failureCost is the sentinel folded in for a failed execution. It
	// sinks repeatedly failing paths to the bottom of the ordering for
	// the rest of the process lifetime.
	failureCost = 1e9
)

type producerStats struct {
	count int
	avg   float64
}

// costTable holds per-producer running averages. There is one table
// per Graph, shared by every scope derived from it, and it is never
// reset. Guarded for multi-goroutine hosts.
type costTable struct {
	mu    sync.Mutex
	stats map[Producer]*producerStats
}

func newCostTable() *costTable {
	return &costTable{stats: make(map[Producer]*producerStats)}
}

// record folds one observed cost into the producer's running average.
func (t *costTable) record(p Producer, cost float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats[p]
	if s == nil {
		s = &producerStats{}
		t.stats[p] = s
	}
	s.avg = (s.avg*float64(s.count) + cost) / float64(s.count+1)
	s.count++
}

// estimate returns the producer's running average, or untriedCost when
// it has never executed.
func (t *costTable) estimate(p Producer) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s := t.stats[p]; s != nil && s.count > 0 {
		return s.avg
	}
	return untriedCost
}

func (t *costTable) snapshot(p Producer) (count int, avg float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s := t.stats[p]; s != nil {
		return s.count, s.avg
	}
	return 0, 0
}
