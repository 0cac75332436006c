package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pmercer/marketwire/internal/consensus"
	"github.com/pmercer/marketwire/internal/model"
)

// Admitter is the deduplication stage.
type Admitter interface {
	Admit(ctx context.Context, item model.NewsItem) bool
}

// AlertBuilder is the enrichment stage.
type AlertBuilder interface {
	BuildStoryAlert(ctx context.Context, story *model.VerifiedStory) model.AlertItem
	BuildFundamentalsAlert(ctx context.Context, symbol string, report model.FundamentalsReport) model.AlertItem
}

// AlertQueue is the delivery stage.
type AlertQueue interface {
	Offer(item model.AlertItem) bool
	RequestNext() bool
	SetMode(mode model.DeliveryMode)
	SetFilter(symbol string)
	Depth() int
}

// SymbolCommands is the slice of the universe manager driven by user
// commands.
type SymbolCommands interface {
	AddSymbols(ctx context.Context, symbols []string) map[string]bool
	RemoveSymbol(ctx context.Context, symbol string)
	TogglePriority(ctx context.Context, symbol string) bool
}

// Notifier receives pipeline-level notifications for the presentation
// layer. May be nil.
type Notifier interface {
	UniverseSynced(symbolCount int)
	PriceUpdated(quote model.PriceQuote)
}

// Config holds engine tuning.
type Config struct {
	BufferCapacity int           // initial event buffer size (default: 64)
	FlushInterval  time.Duration // stale-story sweep cadence (default: 15s)
	FlushTimeout   time.Duration // age at which a lone story is promoted (default: 45s)
	QueueCapacity  int           // delivery queue capacity, for load shedding (default: 5)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferCapacity: 64,
		FlushInterval:  15 * time.Second,
		FlushTimeout:   45 * time.Second,
		QueueCapacity:  5,
	}
}

// Stats is a snapshot of engine counters.
type Stats struct {
	EventsIn        int64
	PriceUpdates    int64
	NewsAdmitted    int64
	NewsDuplicate   int64
	StoriesVerified int64
	StoriesFlushed  int64
	AlertsQueued    int64
	AlertsShed      int64
	Buffered        int
}

// Engine is the event pump at the center of the pipeline.
type Engine struct {
	cfg      Config
	deduper  Admitter
	agg      *consensus.Aggregator
	enricher AlertBuilder
	queue    AlertQueue
	symbols  SymbolCommands
	notifier Notifier
	logger   *slog.Logger

	buffer *eventBuffer[model.RawEvent]

	eventsIn        atomic.Int64
	priceUpdates    atomic.Int64
	newsAdmitted    atomic.Int64
	newsDuplicate   atomic.Int64
	storiesVerified atomic.Int64
	storiesFlushed  atomic.Int64
	alertsQueued    atomic.Int64
	alertsShed      atomic.Int64

	mu         sync.Mutex
	lastPrices map[string]float64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewEngine creates an Engine.
func NewEngine(cfg Config, deduper Admitter, agg *consensus.Aggregator, enricher AlertBuilder, queue AlertQueue, symbols SymbolCommands, notifier Notifier, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = 64
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 15 * time.Second
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 5
	}
	return &Engine{
		cfg:        cfg,
		deduper:    deduper,
		agg:        agg,
		enricher:   enricher,
		queue:      queue,
		symbols:    symbols,
		notifier:   notifier,
		logger:     logger,
		buffer:     newEventBuffer[model.RawEvent](cfg.BufferCapacity),
		lastPrices: make(map[string]float64),
	}
}

// Start launches the consume and flush loops.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(2)
	go e.consume()
	go e.flushLoop()

	e.logger.Info("pipeline engine started",
		"flush_interval", e.cfg.FlushInterval,
		"flush_timeout", e.cfg.FlushTimeout,
	)

	return nil
}

// Stop closes intake and waits for the loops to drain.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}
	e.buffer.close()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("pipeline engine stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleEvent enqueues a raw event for processing. Returns false once
// the engine is stopped.
func (e *Engine) HandleEvent(ev model.RawEvent) bool {
	if !e.buffer.push(ev) {
		return false
	}
	e.eventsIn.Add(1)
	return true
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		EventsIn:        e.eventsIn.Load(),
		PriceUpdates:    e.priceUpdates.Load(),
		NewsAdmitted:    e.newsAdmitted.Load(),
		NewsDuplicate:   e.newsDuplicate.Load(),
		StoriesVerified: e.storiesVerified.Load(),
		StoriesFlushed:  e.storiesFlushed.Load(),
		AlertsQueued:    e.alertsQueued.Load(),
		AlertsShed:      e.alertsShed.Load(),
		Buffered:        e.buffer.len(),
	}
}

// consume is the single-threaded event dispatch loop.
func (e *Engine) consume() {
	defer e.wg.Done()

	for {
		ev, ok := e.buffer.pop()
		if !ok {
			return
		}
		e.dispatch(ev)
	}
}

func (e *Engine) dispatch(ev model.RawEvent) {
	switch ev.Type {
	case model.EventPrice:
		e.handlePrice(ev)
	case model.EventNews:
		e.handleNews(ev)
	case model.EventFundamentals:
		e.handleFundamentals(ev)
	case model.EventUniverseSync:
		if e.notifier != nil {
			e.notifier.UniverseSynced(len(ev.Symbols))
		}
	default:
		e.logger.Warn("unknown event type", "type", ev.Type)
	}
}

func (e *Engine) handlePrice(ev model.RawEvent) {
	if ev.Price == nil {
		return
	}
	e.priceUpdates.Add(1)

	quote := *ev.Price
	e.mu.Lock()
	if prev, ok := e.lastPrices[quote.Symbol]; ok && quote.PrevPrice == 0 {
		quote.PrevPrice = prev
	}
	e.lastPrices[quote.Symbol] = quote.Price
	e.mu.Unlock()

	if e.notifier != nil {
		e.notifier.PriceUpdated(quote)
	}
}

func (e *Engine) handleNews(ev model.RawEvent) {
	if ev.News == nil {
		return
	}

	if !e.deduper.Admit(e.ctx, *ev.News) {
		e.newsDuplicate.Add(1)
		return
	}
	e.newsAdmitted.Add(1)

	story := e.agg.Process(ev.Symbol, *ev.News)
	if story == nil {
		return
	}
	e.storiesVerified.Add(1)
	e.deliverStory(story)
}

func (e *Engine) handleFundamentals(ev model.RawEvent) {
	if ev.Fund == nil {
		return
	}
	if e.shedIfFull(ev.Symbol) {
		return
	}
	item := e.enricher.BuildFundamentalsAlert(e.ctx, ev.Symbol, *ev.Fund)
	e.offer(item)
}

// deliverStory enriches a verified story and queues the alert, unless
// the queue is already full.
func (e *Engine) deliverStory(story *model.VerifiedStory) {
	if e.shedIfFull(story.Symbol) {
		return
	}
	item := e.enricher.BuildStoryAlert(e.ctx, story)
	e.offer(item)
}

// shedIfFull drops work before enrichment when the delivery queue has
// no room for its result.
func (e *Engine) shedIfFull(symbol string) bool {
	if e.queue.Depth() < e.cfg.QueueCapacity {
		return false
	}
	e.alertsShed.Add(1)
	e.logger.Warn("delivery queue full, shedding before enrichment", "symbol", symbol)
	return true
}

func (e *Engine) offer(item model.AlertItem) {
	if e.queue.Offer(item) {
		e.alertsQueued.Add(1)
	} else {
		e.alertsShed.Add(1)
	}
}

// flushLoop promotes stale unconfirmed stories on the delivery cadence.
func (e *Engine) flushLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			for _, story := range e.agg.Flush(e.cfg.FlushTimeout) {
				e.storiesFlushed.Add(1)
				e.deliverStory(story)
			}
		}
	}
}
