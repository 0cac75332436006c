package delivery

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pmercer/marketwire/internal/model"
)

// Sink receives delivery-side events. Calls are never made while the
// queue lock is held.
type Sink interface {
	AlertReady(item model.AlertItem)
	QueueDepthChanged(depth int)
}

// Config holds delivery tuning.
type Config struct {
	Capacity     int
	AutoInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:     5,
		AutoInterval: 15 * time.Second,
	}
}

// Queue is the bounded alert queue with AUTO/MANUAL flow control.
type Queue struct {
	cfg    Config
	sink   Sink
	logger *slog.Logger

	mu           sync.Mutex
	items        []model.AlertItem
	mode         model.DeliveryMode
	filter       string
	timer        *time.Timer
	timerPending bool
	stopped      bool
}

// NewQueue creates a Queue starting in AUTO mode with no filter.
func NewQueue(cfg Config, sink Sink, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1
	}
	return &Queue{
		cfg:    cfg,
		sink:   sink,
		logger: logger,
		mode:   model.ModeAuto,
		filter: model.FilterAll,
	}
}

// Stop cancels any pending timer. Offers after Stop are rejected.
func (q *Queue) Stop() {
	q.mu.Lock()
	q.stopped = true
	q.stopTimerLocked()
	q.mu.Unlock()
}

// Offer appends an alert unless the queue is at capacity, in which case
// the new item is shed. Returns whether the item was accepted.
func (q *Queue) Offer(item model.AlertItem) bool {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return false
	}
	if len(q.items) >= q.cfg.Capacity {
		q.mu.Unlock()
		q.logger.Warn("delivery queue full, shedding alert",
			"symbol", item.Symbol, "headline", item.Payload.Headline)
		return false
	}

	q.items = append(q.items, item)
	depth := len(q.items)

	// Cold start: an empty queue gaining its first item in AUTO mode
	// with no timer pending delivers immediately, then the normal
	// cadence resumes.
	var delivered *model.AlertItem
	if q.mode == model.ModeAuto && depth == 1 && !q.timerPending {
		delivered = q.popMatchLocked()
		q.armTimerLocked(delivered != nil)
	}
	depthAfter := len(q.items)
	q.mu.Unlock()

	q.notifyDepth(depth)
	if delivered != nil {
		q.notifyAlert(*delivered)
		if depthAfter != depth {
			q.notifyDepth(depthAfter)
		}
	}
	return true
}

// RequestNext delivers the first queued alert matching the active
// filter, regardless of mode. Returns false when nothing matches.
func (q *Queue) RequestNext() bool {
	q.mu.Lock()
	item := q.popMatchLocked()
	depth := len(q.items)
	q.mu.Unlock()

	if item == nil {
		return false
	}
	q.notifyAlert(*item)
	q.notifyDepth(depth)
	return true
}

// SetMode switches flow control. Entering AUTO attempts one delivery
// immediately when eligible content is pending; entering MANUAL stops
// the timer.
func (q *Queue) SetMode(mode model.DeliveryMode) {
	q.mu.Lock()
	if q.mode == mode {
		q.mu.Unlock()
		return
	}
	q.mode = mode
	q.logger.Info("delivery mode changed", "mode", mode)

	var delivered *model.AlertItem
	if mode == model.ModeAuto {
		delivered = q.popMatchLocked()
		q.armTimerLocked(delivered != nil)
	} else {
		q.stopTimerLocked()
	}
	depth := len(q.items)
	q.mu.Unlock()

	if delivered != nil {
		q.notifyAlert(*delivered)
		q.notifyDepth(depth)
	}
}

// SetFilter scopes delivery to one symbol, or to everything with
// FilterAll.
func (q *Queue) SetFilter(symbol string) {
	q.mu.Lock()
	if symbol == "" {
		symbol = model.FilterAll
	}
	q.filter = symbol
	q.mu.Unlock()
	q.logger.Info("delivery filter changed", "filter", symbol)
}

// Mode returns the current delivery mode.
func (q *Queue) Mode() model.DeliveryMode {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.mode
}

// Depth returns the number of queued alerts.
func (q *Queue) Depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// autoFire is the recurring AUTO timer body.
func (q *Queue) autoFire() {
	q.mu.Lock()
	q.timerPending = false
	if q.stopped || q.mode != model.ModeAuto {
		q.mu.Unlock()
		return
	}
	item := q.popMatchLocked()
	q.armTimerLocked(item != nil)
	depth := len(q.items)
	q.mu.Unlock()

	if item != nil {
		q.notifyAlert(*item)
		q.notifyDepth(depth)
	}
}

// popMatchLocked removes and returns the first item matching the active
// filter, preserving the order of everything it skips. Caller holds the
// lock.
func (q *Queue) popMatchLocked() *model.AlertItem {
	for i, item := range q.items {
		if q.filter == model.FilterAll || item.Symbol == q.filter {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return &item
		}
	}
	return nil
}

// armTimerLocked schedules the next AUTO fire. The timer runs when
// content remains or when a delivery just happened, so the cadence
// throttles bursts; it stays idle otherwise so the next arrival can
// cold-start. Caller holds the lock.
func (q *Queue) armTimerLocked(justDelivered bool) {
	if q.stopped || q.mode != model.ModeAuto || q.timerPending {
		return
	}
	if len(q.items) == 0 && !justDelivered {
		return
	}
	q.timer = time.AfterFunc(q.cfg.AutoInterval, q.autoFire)
	q.timerPending = true
}

func (q *Queue) stopTimerLocked() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.timerPending = false
}

func (q *Queue) notifyAlert(item model.AlertItem) {
	if q.sink != nil {
		q.sink.AlertReady(item)
	}
}

func (q *Queue) notifyDepth(depth int) {
	if q.sink != nil {
		q.sink.QueueDepthChanged(depth)
	}
}
