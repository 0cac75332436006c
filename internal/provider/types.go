package provider

import "time"

// Wire types for JSON parsing

// quoteWire is the wire format for quote responses.
type quoteWire struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	TS     int64   `json:"ts"` // seconds since epoch
}

// historyWire is the wire format for price history responses.
type historyWire struct {
	Symbol string `json:"symbol"`
	Points []struct {
		TS    int64   `json:"ts"`
		Price float64 `json:"price"`
	} `json:"points"`
}

// newsWire is the wire format for per-symbol and global news responses.
type newsWire struct {
	Items []newsItemWire `json:"items"`
}

type newsItemWire struct {
	Source      string   `json:"source"`
	Publisher   string   `json:"publisher"` // some feeds use publisher instead of source
	Headline    string   `json:"headline"`
	Title       string   `json:"title"` // headline alias
	Summary     string   `json:"summary"`
	Sentiment   string   `json:"sentiment"`
	URL         string   `json:"url"`
	Symbols     []string `json:"symbols"` // tagged symbols, global feed only
	PublishedTS int64    `json:"published_ts"`
}

// source returns the best available source label.
func (w *newsItemWire) source() string {
	if w.Source != "" {
		return w.Source
	}
	if w.Publisher != "" {
		return w.Publisher
	}
	return "Unknown"
}

// headline returns the best available headline.
func (w *newsItemWire) headline() string {
	if w.Headline != "" {
		return w.Headline
	}
	return w.Title
}

// publishedAt converts the wire timestamp, defaulting to now when absent.
func (w *newsItemWire) publishedAt() time.Time {
	if w.PublishedTS == 0 {
		return time.Now().UTC()
	}
	return time.Unix(w.PublishedTS, 0).UTC()
}

// listingWire is the wire format for full-listing responses.
type listingWire struct {
	Symbols []string `json:"symbols"`
}

// validateWire is the wire format for symbol validation responses.
type validateWire struct {
	Symbol string `json:"symbol"`
	Valid  bool   `json:"valid"`
}
