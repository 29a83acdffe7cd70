package dispatcher

import (
	"sort"
	"sync"
	"time"

	"github.com/dshills/findstorm/internal/dispatcher/handler"
)

// ActionStats summarizes the dispatches of one action.
type ActionStats struct {
	Name     string
	Count    uint64
	ByStatus map[handler.ResultStatus]uint64
	Total    time.Duration
	Slowest  time.Duration
}

// Errors returns how many dispatches ended in StatusError.
func (a ActionStats) Errors() uint64 {
	return a.ByStatus[handler.StatusError]
}

// Mean returns the average dispatch duration.
func (a ActionStats) Mean() time.Duration {
	if a.Count == 0 {
		return 0
	}
	return a.Total / time.Duration(a.Count)
}

func (a *ActionStats) clone() ActionStats {
	cp := *a
	cp.ByStatus = make(map[handler.ResultStatus]uint64, len(a.ByStatus))
	for k, v := range a.ByStatus {
		cp.ByStatus[k] = v
	}
	return cp
}

// Stats counts dispatches per action and outcome.
type Stats struct {
	mu      sync.Mutex
	actions map[string]*ActionStats
	total   uint64
	errors  uint64
	panics  uint64
}

func newStats() *Stats {
	return &Stats{actions: make(map[string]*ActionStats)}
}

func (s *Stats) record(name string, d time.Duration, status handler.ResultStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.actions[name]
	if a == nil {
		a = &ActionStats{Name: name, ByStatus: make(map[handler.ResultStatus]uint64)}
		s.actions[name] = a
	}
	a.Count++
	a.ByStatus[status]++
	a.Total += d
	a.Slowest = max(a.Slowest, d)

	s.total++
	if status == handler.StatusError {
		s.errors++
	}
}

func (s *Stats) recordPanic() {
	s.mu.Lock()
	s.panics++
	s.mu.Unlock()
}

// Action returns a copy of the stats for name.
func (s *Stats) Action(name string) (ActionStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actions[name]
	if !ok {
		return ActionStats{}, false
	}
	return a.clone(), true
}

// Busiest returns up to n actions ordered by dispatch count, then name.
func (s *Stats) Busiest(n int) []ActionStats {
	s.mu.Lock()
	out := make([]ActionStats, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a.clone())
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out[:min(n, len(out))]
}

// Totals returns the dispatch, error and recovered panic counts.
func (s *Stats) Totals() (dispatches, errors, panics uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, s.errors, s.panics
}
