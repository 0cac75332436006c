package consensus

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pmercer/marketwire/internal/model"
)

// Config holds consensus tuning.
type Config struct {
	Threshold int           // distinct sources required to promote
	TTL       time.Duration // pending report lifetime
}

// DefaultConfig returns single-source trust with a 30s window, the
// right setting when deduplication already guarantees story uniqueness.
func DefaultConfig() Config {
	return Config{
		Threshold: 1,
		TTL:       30 * time.Second,
	}
}

// pendingReport is one source's contribution to a symbol buffer.
type pendingReport struct {
	source     string
	headline   string
	summary    string
	sentiment  string
	url        string
	receivedAt time.Time
}

// Aggregator is the per-symbol corroboration state machine.
type Aggregator struct {
	cfg      Config
	classify Classifier
	logger   *slog.Logger

	mu      sync.Mutex
	buffers map[string][]pendingReport

	now func() time.Time // test seam
}

// NewAggregator creates an Aggregator. A nil classifier uses
// ClassifyImpact.
func NewAggregator(cfg Config, classify Classifier, logger *slog.Logger) *Aggregator {
	if cfg.Threshold < 1 {
		cfg.Threshold = 1
	}
	if classify == nil {
		classify = ClassifyImpact
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		cfg:      cfg,
		classify: classify,
		logger:   logger,
		buffers:  make(map[string][]pendingReport),
		now:      time.Now,
	}
}

// Process records a report for a symbol. It returns a VerifiedStory when
// the report completes consensus, or nil when the report is buffered or
// rejected as a same-source duplicate.
func (a *Aggregator) Process(symbol string, item model.NewsItem) *model.VerifiedStory {
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	buf := a.purgeLocked(symbol, now, a.cfg.TTL)

	for _, r := range buf {
		if r.source == item.Source {
			a.logger.Debug("same-source report rejected",
				"symbol", symbol, "source", item.Source)
			return nil
		}
	}

	buf = append(buf, pendingReport{
		source:     item.Source,
		headline:   item.Headline,
		summary:    item.Summary,
		sentiment:  item.Sentiment,
		url:        item.URL,
		receivedAt: now,
	})

	if len(buf) >= a.cfg.Threshold {
		delete(a.buffers, symbol)
		return a.promote(symbol, buf, now)
	}

	a.buffers[symbol] = buf
	return nil
}

// Flush promotes every buffer whose oldest report has waited at least
// timeout, without requiring consensus. Each buffer is promoted at most
// once; promotion removes it. For flush purposes a pending report lives
// until the longer of the TTL and the wait window, so a lone report
// reaches promotion even when the window exceeds the TTL.
func (a *Aggregator) Flush(timeout time.Duration) []*model.VerifiedStory {
	now := a.now()

	lifetime := a.cfg.TTL
	if timeout > lifetime {
		lifetime = timeout
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	var stories []*model.VerifiedStory
	for symbol := range a.buffers {
		buf := a.purgeLocked(symbol, now, lifetime)
		if len(buf) == 0 {
			continue
		}
		if now.Sub(buf[0].receivedAt) < timeout {
			a.buffers[symbol] = buf
			continue
		}
		delete(a.buffers, symbol)
		a.logger.Debug("promoting stale buffer without consensus",
			"symbol", symbol, "sources", len(buf))
		stories = append(stories, a.promote(symbol, buf, now))
	}
	return stories
}

// PendingCount returns the number of symbols with buffered reports.
func (a *Aggregator) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffers)
}

// purgeLocked drops reports older than lifetime for a symbol and
// returns the surviving buffer. Caller holds the lock.
func (a *Aggregator) purgeLocked(symbol string, now time.Time, lifetime time.Duration) []pendingReport {
	buf := a.buffers[symbol]
	if len(buf) == 0 {
		return nil
	}
	kept := buf[:0]
	for _, r := range buf {
		if now.Sub(r.receivedAt) < lifetime {
			kept = append(kept, r)
		}
	}
	if len(kept) == 0 {
		delete(a.buffers, symbol)
		return nil
	}
	a.buffers[symbol] = kept
	return kept
}

// promote builds the VerifiedStory for a buffer. The most recent
// headline represents the story; every non-empty summary is retained.
func (a *Aggregator) promote(symbol string, buf []pendingReport, now time.Time) *model.VerifiedStory {
	latest := buf[len(buf)-1]

	sources := make([]string, 0, len(buf))
	var summaries []string
	for _, r := range buf {
		sources = append(sources, r.source)
		if strings.TrimSpace(r.summary) != "" {
			summaries = append(summaries, r.summary)
		}
	}

	sentiment := latest.sentiment
	if sentiment == "" {
		sentiment = "NEUTRAL"
	}

	return &model.VerifiedStory{
		ID:        uuid.New(),
		Symbol:    symbol,
		Headline:  latest.headline,
		Sources:   sources,
		Summaries: summaries,
		Sentiment: sentiment,
		Impact:    a.classify(latest.headline + " " + latest.summary),
		URL:       latest.url,
		Timestamp: now,
	}
}
