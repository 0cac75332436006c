package store

import (
	"context"
	"time"

	"github.com/pmercer/marketwire/internal/model"
)

// Store is the persistence interface used by the pipeline components.
// Implementations must be safe for concurrent use; callers never hold
// locks across Store calls.
type Store interface {
	// Tickers (full universe).
	GetTickers(ctx context.Context) ([]string, error)
	AddTickers(ctx context.Context, symbols []string) error

	// Settings (serialized strings/JSON).
	GetSetting(ctx context.Context, key string) (string, error) // "" when absent
	SetSetting(ctx context.Context, key, value string) error

	// Persistent dedup.
	IsNewsSeen(ctx context.Context, key string) (bool, error)
	MarkNewsSeen(ctx context.Context, key string, at time.Time) error
	PruneSeenNews(ctx context.Context, olderThan time.Time) (int64, error)

	// Incremental price cache.
	GetPriceHistory(ctx context.Context, symbol string, since time.Time) ([]model.PricePoint, error)
	StorePrices(ctx context.Context, symbol string, rows []model.PricePoint) error
	GetLastPriceTimestamp(ctx context.Context, symbol string) (time.Time, error) // zero time when none

	// Analysis verdict cache.
	GetAnalysisCache(ctx context.Context, hash string) (string, bool, error)
	StoreAnalysisCache(ctx context.Context, hash, verdict string, at time.Time) error
}

// Well-known setting keys.
const (
	SettingMonitoring   = "monitoring_universe"
	SettingPriority     = "priority_universe"
	SettingLastUniverse = "last_universe_sync"
)
