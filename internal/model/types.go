package model

import (
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Raw Events (Poller output, ephemeral)
// -----------------------------------------------------------------------------

// EventType identifies the kind of a RawEvent.
type EventType string

const (
	EventPrice        EventType = "PRICE"
	EventNews         EventType = "NEWS"
	EventFundamentals EventType = "FUNDAMENTALS"
	EventUniverseSync EventType = "UNIVERSE_SYNC"
)

// RawEvent is a single observation produced by the poller. Exactly one of
// the payload pointers is set, according to Type. RawEvents are never
// persisted.
type RawEvent struct {
	Type      EventType
	Symbol    string
	Price     *PriceQuote
	News      *NewsItem
	Fund      *FundamentalsReport
	Symbols   []string // UNIVERSE_SYNC payload: the refreshed full universe
	Timestamp time.Time
}

// PriceQuote is a point-in-time price observation for a symbol.
type PriceQuote struct {
	Symbol    string
	Price     float64
	PrevPrice float64 // last price seen by the poller, 0 on first observation
	Timestamp time.Time
}

// PricePoint is a single row of stored price history.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// NewsItem is a raw news report from one provider.
type NewsItem struct {
	Source        string
	Headline      string
	Summary       string
	Sentiment     string // provider-supplied label, "NEUTRAL" when absent
	URL           string // canonical URL, may be empty
	TaggedSymbols []string
	PublishedAt   time.Time
}

// FundamentalsReport carries headline fundamentals for a symbol.
type FundamentalsReport struct {
	RevenueGrowth float64 // fractional, e.g. 0.12 = +12%
	NetMargin     float64
	DebtToEquity  float64
	Guidance      string // RAISED, LOWERED, MAINTAINED
}

// -----------------------------------------------------------------------------
// Verified Stories (Consensus Aggregator output)
// -----------------------------------------------------------------------------

// ImpactTier is the coarse severity classification of a verified story.
type ImpactTier string

const (
	ImpactNormal   ImpactTier = "NORMAL"
	ImpactHigh     ImpactTier = "HIGH"
	ImpactCritical ImpactTier = "CRITICAL"
)

// VerifiedStory is emitted once a pending story reaches the consensus
// threshold of distinct sources, or is force-flushed after the wait window.
type VerifiedStory struct {
	ID        uuid.UUID
	Symbol    string
	Headline  string   // most recent headline in the cluster
	Sources   []string // every contributing source, arrival order
	Summaries []string // every non-empty summary collected
	Sentiment string
	Impact    ImpactTier
	URL       string // most recent report's URL, may be empty
	Timestamp time.Time
}

// Summary returns the longest collected summary, or "" when none exist.
func (s *VerifiedStory) Summary() string {
	best := ""
	for _, sum := range s.Summaries {
		if len(sum) > len(best) {
			best = sum
		}
	}
	return best
}

// -----------------------------------------------------------------------------
// Alerts (Delivery Queue units)
// -----------------------------------------------------------------------------

// AlertPayload is the renderable content handed to the presentation layer.
type AlertPayload struct {
	Headline     string
	Description  string
	Verdict      string // e.g. "AGGRESSIVE BUY (92%)"
	Sources      []string
	Fundamentals string // summary line for fundamentals alerts, else ""
	URL          string
	Impact       ImpactTier
}

// AlertItem is the unit held by the delivery queue.
type AlertItem struct {
	ID        uuid.UUID
	Symbol    string
	Payload   AlertPayload
	CreatedAt time.Time
}

// NewAlertItem builds an AlertItem with a fresh ID.
func NewAlertItem(symbol string, payload AlertPayload) AlertItem {
	return AlertItem{
		ID:        uuid.New(),
		Symbol:    symbol,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// -----------------------------------------------------------------------------
// Flow Control
// -----------------------------------------------------------------------------

// DeliveryMode selects how the delivery queue releases alerts.
type DeliveryMode string

const (
	ModeAuto   DeliveryMode = "AUTO"
	ModeManual DeliveryMode = "MANUAL"
)

// FilterAll is the symbol filter value matching every alert.
const FilterAll = "ALL"
