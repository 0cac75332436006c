package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pmercer/marketwire/internal/model"
)

// MemoryStore is an in-memory Store. It backs tests and carries the
// degraded mode when Postgres is unavailable at startup.
type MemoryStore struct {
	mu       sync.RWMutex
	tickers  map[string]struct{}
	settings map[string]string
	seen     map[string]time.Time
	prices   map[string][]model.PricePoint
	analysis map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tickers:  make(map[string]struct{}),
		settings: make(map[string]string),
		seen:     make(map[string]time.Time),
		prices:   make(map[string][]model.PricePoint),
		analysis: make(map[string]string),
	}
}

func (s *MemoryStore) GetTickers(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	symbols := make([]string, 0, len(s.tickers))
	for sym := range s.tickers {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *MemoryStore) AddTickers(ctx context.Context, symbols []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sym := range symbols {
		s.tickers[sym] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[key], nil
}

func (s *MemoryStore) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	return nil
}

func (s *MemoryStore) IsNewsSeen(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.seen[key]
	return ok, nil
}

func (s *MemoryStore) MarkNewsSeen(ctx context.Context, key string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; !ok {
		s.seen[key] = at.UTC()
	}
	return nil
}

func (s *MemoryStore) PruneSeenNews(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pruned int64
	for key, at := range s.seen {
		if at.Before(olderThan) {
			delete(s.seen, key)
			pruned++
		}
	}
	return pruned, nil
}

func (s *MemoryStore) GetPriceHistory(ctx context.Context, symbol string, since time.Time) ([]model.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var points []model.PricePoint
	for _, p := range s.prices[symbol] {
		if !p.Timestamp.Before(since) {
			points = append(points, p)
		}
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points, nil
}

func (s *MemoryStore) StorePrices(ctx context.Context, symbol string, rows []model.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := make(map[time.Time]struct{}, len(s.prices[symbol]))
	for _, p := range s.prices[symbol] {
		existing[p.Timestamp] = struct{}{}
	}
	for _, r := range rows {
		if _, dup := existing[r.Timestamp]; dup {
			continue
		}
		s.prices[symbol] = append(s.prices[symbol], r)
		existing[r.Timestamp] = struct{}{}
	}
	sort.Slice(s.prices[symbol], func(i, j int) bool {
		return s.prices[symbol][i].Timestamp.Before(s.prices[symbol][j].Timestamp)
	})
	return nil
}

func (s *MemoryStore) GetLastPriceTimestamp(ctx context.Context, symbol string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	points := s.prices[symbol]
	if len(points) == 0 {
		return time.Time{}, nil
	}
	return points[len(points)-1].Timestamp, nil
}

func (s *MemoryStore) GetAnalysisCache(ctx context.Context, hash string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	verdict, ok := s.analysis[hash]
	return verdict, ok, nil
}

func (s *MemoryStore) StoreAnalysisCache(ctx context.Context, hash, verdict string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis[hash] = verdict
	return nil
}
