package dedup

import "container/list"

// lruSet is a fixed-capacity set with least-recently-used eviction.
// Not safe for concurrent use; the Deduper serializes access.
type lruSet struct {
	capacity int
	order    *list.List // front = most recent
	index    map[string]*list.Element
}

func newLRUSet(capacity int) *lruSet {
	if capacity <= 0 {
		capacity = 1
	}
	return &lruSet{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
	}
}

// contains reports membership and refreshes recency on a hit.
func (s *lruSet) contains(key string) bool {
	el, ok := s.index[key]
	if ok {
		s.order.MoveToFront(el)
	}
	return ok
}

// add inserts a key, evicting the least recently used entry at capacity.
func (s *lruSet) add(key string) {
	if el, ok := s.index[key]; ok {
		s.order.MoveToFront(el)
		return
	}
	if s.order.Len() >= s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.index, oldest.Value.(string))
		}
	}
	s.index[key] = s.order.PushFront(key)
}

func (s *lruSet) len() int {
	return s.order.Len()
}
