package universe

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/pmercer/marketwire/internal/model"
	"github.com/pmercer/marketwire/internal/provider"
	"github.com/pmercer/marketwire/internal/store"
)

// Config holds Universe Manager configuration.
type Config struct {
	PriorityCap  int
	SyncInterval time.Duration
	Defaults     []string // monitored symbols seeded on first run
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PriorityCap:  5,
		SyncInterval: 24 * time.Hour,
	}
}

// SymbolSource provides listing and validation operations.
type SymbolSource interface {
	FetchFullListing(ctx context.Context) ([]string, error)
	Validate(ctx context.Context, symbol string) (bool, error)
}

// EventSink receives UNIVERSE_SYNC events.
type EventSink interface {
	HandleEvent(ev model.RawEvent) bool
}

// Manager owns the symbol universes, their validation, and persistence.
type Manager struct {
	cfg      Config
	store    store.Store
	provider SymbolSource
	sink     EventSink
	logger   *slog.Logger

	state *state
	sched *cron.Cron

	// pollNow triggers an immediate out-of-band poll after a successful
	// Track, so the user sees data without waiting for the next sweep.
	pollNow func(symbol string)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a Universe Manager.
func NewManager(cfg Config, st store.Store, provider SymbolSource, sink EventSink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		store:    st,
		provider: provider,
		sink:     sink,
		logger:   logger,
		state:    newState(),
	}
}

// SetPollNow installs the immediate-poll callback.
func (m *Manager) SetPollNow(fn func(symbol string)) {
	m.pollNow = fn
}

// Start loads persisted state and begins the daily listing sync.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	m.loadPersisted(m.ctx)

	m.sched = cron.New()
	if _, err := m.sched.AddFunc("@every "+m.cfg.SyncInterval.String(), func() {
		m.syncUniverse(m.ctx)
	}); err != nil {
		return err
	}
	m.sched.Start()

	// Sync immediately when the persisted universe is empty or stale.
	if m.needsImmediateSync(m.ctx) {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.syncUniverse(m.ctx)
		}()
	}

	m.logger.Info("universe manager started",
		"full", m.state.fullSize(),
		"monitoring", len(m.state.monitoringSnapshot()),
		"priority", len(m.state.prioritySnapshot()),
	)

	return nil
}

// Stop shuts down the sync schedule.
func (m *Manager) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.sched != nil {
		<-m.sched.Stop().Done()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("universe manager stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loadPersisted restores the universes from the store. Persistence
// failures degrade to the configured defaults.
func (m *Manager) loadPersisted(ctx context.Context) {
	tickers, err := m.store.GetTickers(ctx)
	if err != nil {
		m.logger.Error("failed to load full universe", "error", err)
	} else {
		m.state.setFull(tickers)
	}

	monitoring := m.loadList(ctx, store.SettingMonitoring)
	if len(monitoring) == 0 {
		monitoring = m.cfg.Defaults
	}
	priority := m.loadList(ctx, store.SettingPriority)
	m.state.setLists(monitoring, priority)
}

func (m *Manager) loadList(ctx context.Context, key string) []string {
	raw, err := m.store.GetSetting(ctx, key)
	if err != nil {
		m.logger.Error("failed to load setting", "key", key, "error", err)
		return nil
	}
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		m.logger.Error("corrupt setting, ignoring", "key", key, "error", err)
		return nil
	}
	return list
}

// Track validates a symbol and adds it to the monitoring universe.
// Returns false without mutating state when validation fails.
func (m *Manager) Track(ctx context.Context, symbol string) bool {
	sym := provider.NormalizeSymbol(symbol)
	if sym == "" {
		return false
	}
	if m.state.isMonitored(sym) {
		return true
	}

	if !m.validate(ctx, sym) {
		return false
	}

	snap := m.state.addMonitored(sym)
	if snap == nil {
		return true // raced with another add
	}
	m.persistList(ctx, store.SettingMonitoring, snap)

	m.logger.Info("tracking symbol", "symbol", sym)

	if m.pollNow != nil {
		m.pollNow(sym)
	}
	return true
}

// validate applies the admission policy: trust full-universe membership,
// probe the provider otherwise, and admit permissively only while the
// full universe is still empty.
func (m *Manager) validate(ctx context.Context, sym string) bool {
	if m.state.containsFull(sym) {
		return true
	}
	if m.state.fullSize() == 0 {
		m.logger.Debug("permissive admission, universe not yet synced", "symbol", sym)
		return true
	}

	ok, err := m.provider.Validate(ctx, sym)
	if err != nil {
		m.logger.Warn("symbol validation failed", "symbol", sym, "error", err)
		return false
	}
	return ok
}

// AddSymbols tracks a batch of symbols, validating concurrently.
// The result maps each requested symbol to its outcome.
func (m *Manager) AddSymbols(ctx context.Context, symbols []string) map[string]bool {
	results := make(map[string]bool, len(symbols))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			ok := m.Track(gctx, symbol)
			mu.Lock()
			results[provider.NormalizeSymbol(symbol)] = ok
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	return results
}

// MarkPriority promotes a monitored symbol into the priority universe.
// Fails when the symbol is not monitored or the priority list is full.
func (m *Manager) MarkPriority(ctx context.Context, symbol string) bool {
	sym := provider.NormalizeSymbol(symbol)
	snap := m.state.addPriority(sym, m.cfg.PriorityCap)
	if snap == nil {
		return false
	}
	m.persistList(ctx, store.SettingPriority, snap)
	m.logger.Info("priority symbol marked", "symbol", sym)
	return true
}

// UnmarkPriority demotes a symbol. Idempotent.
func (m *Manager) UnmarkPriority(ctx context.Context, symbol string) {
	snap, changed := m.state.removePriority(provider.NormalizeSymbol(symbol))
	if changed {
		m.persistList(ctx, store.SettingPriority, snap)
	}
}

// TogglePriority flips a symbol's priority status. Returns the new status.
func (m *Manager) TogglePriority(ctx context.Context, symbol string) bool {
	if m.state.isPriority(provider.NormalizeSymbol(symbol)) {
		m.UnmarkPriority(ctx, symbol)
		return false
	}
	return m.MarkPriority(ctx, symbol)
}

// RemoveSymbol drops a symbol from monitoring and priority. Idempotent.
func (m *Manager) RemoveSymbol(ctx context.Context, symbol string) {
	sym := provider.NormalizeSymbol(symbol)
	monitoring, priority, changed := m.state.removeMonitored(sym)
	if !changed {
		return
	}
	m.persistList(ctx, store.SettingMonitoring, monitoring)
	m.persistList(ctx, store.SettingPriority, priority)
	m.logger.Info("symbol removed", "symbol", sym)
}

// persistList writes a symbol list setting. Failures degrade to
// in-memory-only behavior for this cycle.
func (m *Manager) persistList(ctx context.Context, key string, list []string) {
	raw, err := json.Marshal(list)
	if err != nil {
		m.logger.Error("marshal symbol list", "key", key, "error", err)
		return
	}
	if err := m.store.SetSetting(ctx, key, string(raw)); err != nil {
		m.logger.Error("persist symbol list", "key", key, "error", err)
	}
}

// PrioritySymbols returns the priority universe.
func (m *Manager) PrioritySymbols() []string {
	return m.state.prioritySnapshot()
}

// StandardSymbols returns monitoring minus priority.
func (m *Manager) StandardSymbols() []string {
	return m.state.standardSnapshot()
}

// MonitoredSymbols returns the monitoring universe.
func (m *Manager) MonitoredSymbols() []string {
	return m.state.monitoringSnapshot()
}

// ContainsFull reports whether a symbol is in the full universe.
func (m *Manager) ContainsFull(symbol string) bool {
	return m.state.containsFull(symbol)
}

// FullSize returns the size of the full universe.
func (m *Manager) FullSize() int {
	return m.state.fullSize()
}
