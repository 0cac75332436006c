package universe

import (
	"context"
	"time"

	"github.com/pmercer/marketwire/internal/model"
	"github.com/pmercer/marketwire/internal/store"
)

// needsImmediateSync reports whether the persisted full universe is
// empty or the last sync is older than the sync interval.
func (m *Manager) needsImmediateSync(ctx context.Context) bool {
	if m.state.fullSize() == 0 {
		return true
	}
	raw, err := m.store.GetSetting(ctx, store.SettingLastUniverse)
	if err != nil || raw == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true
	}
	return time.Since(last) >= m.cfg.SyncInterval
}

// syncUniverse refreshes the full listing from the provider and
// persists it. Tracked symbols that fall off the listing stay
// monitored; only admission of new symbols is affected.
func (m *Manager) syncUniverse(ctx context.Context) {
	m.logger.Info("universe sync starting")
	start := time.Now()

	symbols, err := m.provider.FetchFullListing(ctx)
	if err != nil {
		m.logger.Error("universe sync failed", "error", err)
		return
	}
	if len(symbols) == 0 {
		m.logger.Warn("universe sync returned no symbols, keeping previous universe")
		return
	}

	if err := m.store.AddTickers(ctx, symbols); err != nil {
		m.logger.Error("failed to persist universe tickers", "error", err)
	}

	// Reload the authoritative set from the store so previously
	// persisted tickers survive provider-side truncation. Fall back to
	// merging the fetched listing if the reload fails.
	if tickers, err := m.store.GetTickers(ctx); err == nil && len(tickers) > 0 {
		m.state.setFull(tickers)
	} else {
		m.state.mergeFull(symbols)
	}

	if err := m.store.SetSetting(ctx, store.SettingLastUniverse, time.Now().UTC().Format(time.RFC3339)); err != nil {
		m.logger.Error("failed to persist sync timestamp", "error", err)
	}

	size := m.state.fullSize()
	m.logger.Info("universe sync complete",
		"symbols", size,
		"duration", time.Since(start),
	)

	if m.sink != nil {
		m.sink.HandleEvent(model.RawEvent{
			Type:      model.EventUniverseSync,
			Symbols:   symbols,
			Timestamp: time.Now().UTC(),
		})
	}
}
