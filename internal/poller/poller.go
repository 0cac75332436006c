package poller

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pmercer/marketwire/internal/model"
)

// MarketSource provides the market-data fetches the loops need.
type MarketSource interface {
	FetchPrice(ctx context.Context, symbol string) (model.PriceQuote, error)
	FetchPriceHistory(ctx context.Context, symbol string, since time.Time) ([]model.PricePoint, error)
	FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error)
	FetchGlobalNews(ctx context.Context) ([]model.NewsItem, error)
	FetchFundamentals(ctx context.Context, symbol string) (model.FundamentalsReport, error)
}

// UniverseView exposes the symbol sets the loops sweep.
type UniverseView interface {
	PrioritySymbols() []string
	StandardSymbols() []string
	ContainsFull(symbol string) bool
	FullSize() int
}

// EventHandler receives polled events.
type EventHandler interface {
	HandleEvent(ev model.RawEvent) bool
}

// EventHandlerFunc is a function adapter for EventHandler.
type EventHandlerFunc func(model.RawEvent) bool

func (f EventHandlerFunc) HandleEvent(ev model.RawEvent) bool {
	return f(ev)
}

// Config holds poller configuration.
type Config struct {
	PriorityInterval time.Duration // priority sweep cadence (default: 10s)
	StandardInterval time.Duration // standard sweep cadence (default: 45s)
	GlobalInterval   time.Duration // global feed cadence (default: 60s)
	Concurrency      int           // max concurrent fetches across loops (default: 8)
	RequestTimeout   time.Duration // per-fetch timeout (default: 10s)
	PriorityNewsMax  int           // headlines per priority symbol (default: 5)
	StandardNewsMax  int           // headlines per standard symbol (default: 2)
	FundamentalsProb float64       // chance of a fundamentals pull per poll (default: 0.05)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PriorityInterval: 10 * time.Second,
		StandardInterval: 45 * time.Second,
		GlobalInterval:   60 * time.Second,
		Concurrency:      8,
		RequestTimeout:   10 * time.Second,
		PriorityNewsMax:  5,
		StandardNewsMax:  2,
		FundamentalsProb: 0.05,
	}
}

// Poller runs the priority, standard, and global polling loops.
type Poller struct {
	cfg      Config
	source   MarketSource
	universe UniverseView
	handler  EventHandler
	cache    *PriceCache
	logger   *slog.Logger

	sem chan struct{}

	mu      sync.Mutex // guards stopped against PollNow's wg.Add
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. cache may be nil to skip history refresh.
func New(cfg Config, source MarketSource, universe UniverseView, handler EventHandler, cache *PriceCache, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Poller{
		cfg:      cfg,
		source:   source,
		universe: universe,
		handler:  handler,
		cache:    cache,
		logger:   logger,
		sem:      make(chan struct{}, cfg.Concurrency),
	}
}

// Start begins the three polling loops.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(3)
	go p.runLoop("priority", p.cfg.PriorityInterval, p.sweepPriority)
	go p.runLoop("standard", p.cfg.StandardInterval, p.sweepStandard)
	go p.runLoop("global", p.cfg.GlobalInterval, p.sweepGlobal)

	p.logger.Info("poller started",
		"priority_interval", p.cfg.PriorityInterval,
		"standard_interval", p.cfg.StandardInterval,
		"global_interval", p.cfg.GlobalInterval,
		"concurrency", p.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the loops. Once Stop begins, PollNow is a
// no-op.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PollNow polls one symbol out of band, ahead of its loop's next sweep.
// The wg.Add happens under the mutex so it cannot race the Wait inside
// a concurrent Stop.
func (p *Poller) PollNow(symbol string) {
	p.mu.Lock()
	if p.stopped || p.ctx == nil {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.pollSymbol(symbol, p.cfg.PriorityNewsMax)
	}()
}

// runLoop drives one loop at its interval, sweeping once immediately.
func (p *Poller) runLoop(name string, interval time.Duration, sweep func()) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sweep()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			sweep()
		}
	}
}

func (p *Poller) sweepPriority() {
	p.sweepSymbols("priority", p.universe.PrioritySymbols(), p.cfg.PriorityNewsMax)
}

func (p *Poller) sweepStandard() {
	p.sweepSymbols("standard", p.universe.StandardSymbols(), p.cfg.StandardNewsMax)
}

// sweepSymbols polls every symbol in the list concurrently and waits
// for the sweep to finish before the loop sleeps again.
func (p *Poller) sweepSymbols(loop string, symbols []string, newsMax int) {
	if len(symbols) == 0 {
		p.logger.Debug("nothing to sweep", "loop", loop)
		return
	}
	start := time.Now()

	var wg sync.WaitGroup
	var polled, failed atomic.Int64

	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			select {
			case p.sem <- struct{}{}:
				defer func() { <-p.sem }()
			case <-p.ctx.Done():
				return
			}

			if p.pollSymbol(symbol, newsMax) {
				polled.Add(1)
			} else {
				failed.Add(1)
			}
		}(symbol)
	}

	wg.Wait()

	p.logger.Info("sweep complete",
		"loop", loop,
		"symbols", len(symbols),
		"polled", polled.Load(),
		"failed", failed.Load(),
		"duration", time.Since(start),
	)
}

// pollSymbol fetches one symbol's data, price before news. Returns
// whether anything was fetched successfully.
func (p *Poller) pollSymbol(symbol string, newsMax int) bool {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.RequestTimeout)
	defer cancel()

	ok := false

	quote, err := p.source.FetchPrice(ctx, symbol)
	if err != nil {
		p.logger.Warn("price fetch failed", "symbol", symbol, "err", err)
	} else {
		ok = true
		p.emit(model.RawEvent{
			Type:      model.EventPrice,
			Symbol:    symbol,
			Price:     &quote,
			Timestamp: time.Now().UTC(),
		})
		if p.cache != nil {
			p.cache.refresh(ctx, symbol)
		}
	}

	items, err := p.source.FetchNews(ctx, symbol, newsMax)
	if err != nil {
		p.logger.Warn("news fetch failed", "symbol", symbol, "err", err)
	} else {
		ok = true
		for _, item := range items {
			item := item
			p.emit(model.RawEvent{
				Type:      model.EventNews,
				Symbol:    symbol,
				News:      &item,
				Timestamp: time.Now().UTC(),
			})
		}
	}

	if rand.Float64() < p.cfg.FundamentalsProb {
		p.pollFundamentals(ctx, symbol)
	}

	return ok
}

// pollFundamentals runs the occasional deep check on a symbol.
func (p *Poller) pollFundamentals(ctx context.Context, symbol string) {
	report, err := p.source.FetchFundamentals(ctx, symbol)
	if err != nil {
		p.logger.Warn("fundamentals fetch failed", "symbol", symbol, "err", err)
		return
	}
	p.emit(model.RawEvent{
		Type:      model.EventFundamentals,
		Symbol:    symbol,
		Fund:      &report,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Poller) emit(ev model.RawEvent) {
	if p.handler != nil {
		p.handler.HandleEvent(ev)
	}
}
