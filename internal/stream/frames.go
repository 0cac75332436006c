package stream

import "github.com/pmercer/marketwire/internal/model"

// Frame type identifiers.
const (
	FrameAlertReady   = "alert_ready"
	FrameQueueDepth   = "queue_depth"
	FrameUniverseSync = "universe_sync"
	FramePrice        = "price"
	FrameAddResult    = "add_symbols_result"

	CommandSetMode        = "set_mode"
	CommandRequestNext    = "request_next"
	CommandSetFilter      = "set_filter"
	CommandAddSymbols     = "add_symbols"
	CommandRemoveSymbol   = "remove_symbol"
	CommandTogglePriority = "toggle_priority"
)

// alertFrame announces a delivered alert.
type alertFrame struct {
	Type      string           `json:"type"`
	ID        string           `json:"id"`
	Symbol    string           `json:"symbol"`
	Headline  string           `json:"headline"`
	Body      string           `json:"body,omitempty"`
	Verdict   string           `json:"verdict,omitempty"`
	Sources   []string         `json:"sources,omitempty"`
	URL       string           `json:"url,omitempty"`
	Impact    model.ImpactTier `json:"impact"`
	CreatedAt string           `json:"created_at"`
}

// depthFrame reports the delivery queue depth.
type depthFrame struct {
	Type  string `json:"type"`
	Depth int    `json:"depth"`
}

// syncFrame announces a completed universe sync.
type syncFrame struct {
	Type    string `json:"type"`
	Symbols int    `json:"symbols"`
}

// priceFrame carries a live quote.
type priceFrame struct {
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	PrevPrice float64 `json:"prev_price,omitempty"`
}

// addResultFrame reports bulk-add outcomes back to the requester.
type addResultFrame struct {
	Type    string          `json:"type"`
	Results map[string]bool `json:"results"`
}

// commandFrame is the inbound envelope. Fields are populated according
// to Type.
type commandFrame struct {
	Type    string   `json:"type"`
	Mode    string   `json:"mode,omitempty"`
	Symbol  string   `json:"symbol,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}
