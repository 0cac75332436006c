package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pmercer/marketwire/internal/model"
	"github.com/pmercer/marketwire/internal/store"
)

// HistoryFetcher is the slice of the market source the cache needs.
type HistoryFetcher interface {
	FetchPriceHistory(ctx context.Context, symbol string, since time.Time) ([]model.PricePoint, error)
}

// PriceCache keeps per-symbol price history persisted and fresh.
// Refreshes are incremental: only the window since the last stored
// timestamp is fetched, and a recent-enough snapshot costs nothing.
type PriceCache struct {
	store  store.Store
	source HistoryFetcher
	maxAge time.Duration // snapshot staleness before refetch
	window time.Duration // full backfill span for an empty symbol
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

// NewPriceCache creates a PriceCache.
func NewPriceCache(st store.Store, source HistoryFetcher, maxAge, window time.Duration, logger *slog.Logger) *PriceCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceCache{
		store:    st,
		source:   source,
		maxAge:   maxAge,
		window:   window,
		logger:   logger,
		inflight: make(map[string]bool),
	}
}

// refresh tops up a symbol's stored history when it has gone stale.
// Concurrent refreshes for the same symbol collapse to one.
func (c *PriceCache) refresh(ctx context.Context, symbol string) {
	c.mu.Lock()
	if c.inflight[symbol] {
		c.mu.Unlock()
		return
	}
	c.inflight[symbol] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inflight, symbol)
		c.mu.Unlock()
	}()

	last, err := c.store.GetLastPriceTimestamp(ctx, symbol)
	if err != nil {
		c.logger.Warn("price cache timestamp lookup failed", "symbol", symbol, "err", err)
		return
	}

	if !last.IsZero() && time.Since(last) < c.maxAge {
		return
	}

	since := last
	if since.IsZero() {
		since = time.Now().UTC().Add(-c.window)
	}

	points, err := c.source.FetchPriceHistory(ctx, symbol, since)
	if err != nil {
		c.logger.Warn("price history fetch failed", "symbol", symbol, "err", err)
		return
	}
	if len(points) == 0 {
		return
	}

	if err := c.store.StorePrices(ctx, symbol, points); err != nil {
		c.logger.Warn("price history store failed", "symbol", symbol, "err", err)
		return
	}

	c.logger.Debug("price history refreshed",
		"symbol", symbol,
		"points", len(points),
		"since", since,
	)
}
