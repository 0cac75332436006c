package universe

import (
	"strings"
	"sync"
)

// state holds the in-memory universe sets. All access goes through its
// methods; persistence happens in the manager, outside the lock.
type state struct {
	mu         sync.RWMutex
	full       map[string]struct{}
	monitoring []string // insertion order, as the user added them
	priority   []string
}

func newState() *state {
	return &state{
		full: make(map[string]struct{}),
	}
}

// normalize canonicalizes a symbol for set membership.
func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func (s *state) setFull(symbols []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.full = make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		s.full[normalize(sym)] = struct{}{}
	}
}

func (s *state) mergeFull(symbols []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sym := range symbols {
		s.full[normalize(sym)] = struct{}{}
	}
}

func (s *state) containsFull(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.full[normalize(symbol)]
	return ok
}

func (s *state) fullSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.full)
}

func (s *state) isMonitored(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.monitoring, normalize(symbol))
}

func (s *state) isPriority(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return contains(s.priority, normalize(symbol))
}

// addMonitored appends a symbol and returns the new monitoring snapshot.
// Returns nil when the symbol is already present.
func (s *state) addMonitored(symbol string) []string {
	sym := normalize(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	if contains(s.monitoring, sym) {
		return nil
	}
	s.monitoring = append(s.monitoring, sym)
	return snapshot(s.monitoring)
}

// addPriority appends a symbol subject to cap. Returns the new priority
// snapshot, or nil when rejected (not monitored, at cap, or duplicate).
func (s *state) addPriority(symbol string, cap int) []string {
	sym := normalize(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !contains(s.monitoring, sym) || contains(s.priority, sym) || len(s.priority) >= cap {
		return nil
	}
	s.priority = append(s.priority, sym)
	return snapshot(s.priority)
}

// removePriority removes a symbol. Returns the new snapshot and whether
// anything changed.
func (s *state) removePriority(symbol string) ([]string, bool) {
	sym := normalize(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := remove(s.priority, sym)
	if changed {
		s.priority = next
	}
	return snapshot(s.priority), changed
}

// removeMonitored removes a symbol from monitoring (and priority).
// Returns the monitoring and priority snapshots and whether anything
// changed.
func (s *state) removeMonitored(symbol string) (monitoring, priority []string, changed bool) {
	sym := normalize(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	nextMon, monChanged := remove(s.monitoring, sym)
	if monChanged {
		s.monitoring = nextMon
	}
	nextPri, priChanged := remove(s.priority, sym)
	if priChanged {
		s.priority = nextPri
	}
	return snapshot(s.monitoring), snapshot(s.priority), monChanged || priChanged
}

func (s *state) setLists(monitoring, priority []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.monitoring = s.monitoring[:0]
	for _, sym := range monitoring {
		s.monitoring = append(s.monitoring, normalize(sym))
	}
	s.priority = s.priority[:0]
	for _, sym := range priority {
		sym = normalize(sym)
		if contains(s.monitoring, sym) {
			s.priority = append(s.priority, sym)
		}
	}
}

func (s *state) monitoringSnapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.monitoring)
}

func (s *state) prioritySnapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.priority)
}

// standardSnapshot returns monitoring minus priority.
func (s *state) standardSnapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.monitoring))
	for _, sym := range s.monitoring {
		if !contains(s.priority, sym) {
			out = append(out, sym)
		}
	}
	return out
}

func contains(list []string, sym string) bool {
	for _, s := range list {
		if s == sym {
			return true
		}
	}
	return false
}

func remove(list []string, sym string) ([]string, bool) {
	for i, s := range list {
		if s == sym {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

func snapshot(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
