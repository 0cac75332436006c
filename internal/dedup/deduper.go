package dedup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pmercer/marketwire/internal/model"
	"github.com/pmercer/marketwire/internal/store"
)

// Config holds deduplication tuning.
type Config struct {
	MemoryCapacity int           // LRU entries kept in memory
	Retention      time.Duration // persistent rows older than this are pruned
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MemoryCapacity: 2000,
		Retention:      24 * time.Hour,
	}
}

// Deduper is the two-tier seen-news filter.
type Deduper struct {
	cfg    Config
	store  store.Store
	logger *slog.Logger

	mu  sync.Mutex
	lru *lruSet

	sched *cron.Cron
	ctx   context.Context
}

// NewDeduper creates a Deduper backed by the given store.
func NewDeduper(cfg Config, st store.Store, logger *slog.Logger) *Deduper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduper{
		cfg:    cfg,
		store:  st,
		logger: logger,
		lru:    newLRUSet(cfg.MemoryCapacity),
	}
}

// Start schedules the daily retention prune.
func (d *Deduper) Start(ctx context.Context) error {
	d.ctx = ctx
	d.sched = cron.New()
	if _, err := d.sched.AddFunc("@every 24h", d.prune); err != nil {
		return err
	}
	d.sched.Start()
	return nil
}

// Stop halts the prune schedule.
func (d *Deduper) Stop(ctx context.Context) error {
	if d.sched != nil {
		select {
		case <-d.sched.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Admit reports whether the item is new. A true result records the item
// in both tiers; a false result means the item was already seen and the
// caller should drop it.
func (d *Deduper) Admit(ctx context.Context, item model.NewsItem) bool {
	key := Key(item)

	d.mu.Lock()
	if d.lru.contains(key) {
		d.mu.Unlock()
		return false
	}
	d.mu.Unlock()

	seen, err := d.store.IsNewsSeen(ctx, key)
	if err != nil {
		// Memory-only degradation: better an occasional duplicate
		// alert than a stalled pipeline.
		d.logger.Warn("seen-news lookup failed, admitting on memory tier only",
			"error", err)
		d.remember(key)
		return true
	}
	if seen {
		d.remember(key)
		return false
	}

	d.remember(key)
	if err := d.store.MarkNewsSeen(ctx, key, time.Now().UTC()); err != nil {
		d.logger.Warn("failed to persist seen-news key", "error", err)
	}
	return true
}

// remember records a key in the memory tier.
func (d *Deduper) remember(key string) {
	d.mu.Lock()
	d.lru.add(key)
	d.mu.Unlock()
}

// MemorySize returns the current memory-tier entry count.
func (d *Deduper) MemorySize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lru.len()
}

// prune drops persistent rows older than the retention window. The
// memory tier self-limits through LRU eviction.
func (d *Deduper) prune() {
	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	cutoff := time.Now().UTC().Add(-d.cfg.Retention)
	n, err := d.store.PruneSeenNews(ctx, cutoff)
	if err != nil {
		d.logger.Error("seen-news prune failed", "error", err)
		return
	}
	d.logger.Info("seen-news prune complete", "removed", n, "cutoff", cutoff)
}
