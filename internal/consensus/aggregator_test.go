package consensus

import (
	"testing"
	"time"

	"github.com/pmercer/marketwire/internal/model"
)

func newTestAggregator(threshold int, ttl time.Duration) (*Aggregator, *time.Time) {
	cfg := Config{Threshold: threshold, TTL: ttl}
	a := NewAggregator(cfg, nil, nil)
	clock := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	a.now = func() time.Time { return clock }
	return a, &clock
}

func report(source, headline, summary string) model.NewsItem {
	return model.NewsItem{
		Source:   source,
		Headline: headline,
		Summary:  summary,
	}
}

func TestThresholdOnePromotesImmediately(t *testing.T) {
	a, _ := newTestAggregator(1, 30*time.Second)

	story := a.Process("AAPL", report("Yahoo Finance", "Apple beats estimates", "Q3 beat"))
	if story == nil {
		t.Fatal("threshold=1 should promote the first report")
	}
	if story.Symbol != "AAPL" || len(story.Sources) != 1 {
		t.Fatalf("unexpected story: %+v", story)
	}
	if a.PendingCount() != 0 {
		t.Fatal("buffer not cleared after promotion")
	}
}

func TestThresholdTwoYieldsSingleStory(t *testing.T) {
	a, _ := newTestAggregator(2, 30*time.Second)

	if s := a.Process("AAPL", report("Yahoo Finance", "Apple halted", "first wire")); s != nil {
		t.Fatal("first report alone should not promote")
	}
	story := a.Process("AAPL", report("AlphaVantage", "Apple trading halted", "second wire"))
	if story == nil {
		t.Fatal("second distinct source should complete consensus")
	}

	if len(story.Sources) != 2 {
		t.Fatalf("sources = %v, want both", story.Sources)
	}
	if story.Headline != "Apple trading halted" {
		t.Fatalf("headline = %q, want the most recent", story.Headline)
	}
	if len(story.Summaries) != 2 {
		t.Fatalf("summaries = %v, want both retained", story.Summaries)
	}
}

func TestSameSourceNeverDoubleCounts(t *testing.T) {
	a, _ := newTestAggregator(2, 30*time.Second)

	a.Process("AAPL", report("Yahoo Finance", "Apple halted", ""))
	if s := a.Process("AAPL", report("Yahoo Finance", "Apple halted again", "")); s != nil {
		t.Fatal("same source completed consensus by itself")
	}
	if a.PendingCount() != 1 {
		t.Fatalf("pending = %d, want 1", a.PendingCount())
	}

	// A genuinely distinct source still completes it.
	if s := a.Process("AAPL", report("AlphaVantage", "Apple halted", "")); s == nil {
		t.Fatal("distinct source failed to complete consensus")
	}
}

func TestTTLExpiryPreventsCombination(t *testing.T) {
	a, clock := newTestAggregator(2, 30*time.Second)

	a.Process("AAPL", report("Yahoo Finance", "Apple halted", ""))

	*clock = clock.Add(31 * time.Second)

	if s := a.Process("AAPL", report("AlphaVantage", "Apple halted", "")); s != nil {
		t.Fatal("reports across the TTL boundary combined")
	}
	// The late report starts a fresh buffer.
	if a.PendingCount() != 1 {
		t.Fatalf("pending = %d, want 1", a.PendingCount())
	}
}

func TestFlushPromotesExactlyOnce(t *testing.T) {
	a, clock := newTestAggregator(2, 5*time.Minute)

	a.Process("AAPL", report("Yahoo Finance", "Apple partnership announced", "details"))

	// Not yet stale.
	if got := a.Flush(45 * time.Second); len(got) != 0 {
		t.Fatalf("premature flush promoted %d stories", len(got))
	}

	*clock = clock.Add(46 * time.Second)

	got := a.Flush(45 * time.Second)
	if len(got) != 1 {
		t.Fatalf("flush promoted %d stories, want 1", len(got))
	}
	if got[0].Headline != "Apple partnership announced" {
		t.Fatalf("unexpected story: %+v", got[0])
	}

	// Buffer gone; a second flush promotes nothing.
	if got := a.Flush(45 * time.Second); len(got) != 0 {
		t.Fatal("flush promoted the same story twice")
	}
}

func TestFlushWindowOutlivesTTL(t *testing.T) {
	// Production tuning: 30s TTL, 45s wait window, sweeps every 15s.
	// The lone report must survive past the TTL and get promoted at
	// the window, not silently purged at 30s.
	a, clock := newTestAggregator(2, 30*time.Second)

	a.Process("AAPL", report("Yahoo Finance", "Apple guidance cut", ""))

	for sweep := 0; sweep < 2; sweep++ {
		*clock = clock.Add(15 * time.Second)
		if got := a.Flush(45 * time.Second); len(got) != 0 {
			t.Fatalf("promoted %d stories before the wait window", len(got))
		}
		if a.PendingCount() != 1 {
			t.Fatalf("lone report purged %ds in", (sweep+1)*15)
		}
	}

	*clock = clock.Add(15 * time.Second)
	got := a.Flush(45 * time.Second)
	if len(got) != 1 {
		t.Fatalf("flush promoted %d stories, want the lone report", len(got))
	}
	if got[0].Headline != "Apple guidance cut" {
		t.Fatalf("unexpected story: %+v", got[0])
	}
}

func TestFlushSkipsExpiredBuffers(t *testing.T) {
	a, clock := newTestAggregator(2, 30*time.Second)

	a.Process("AAPL", report("Yahoo Finance", "Apple news", ""))
	*clock = clock.Add(31 * time.Second)

	// Past the TTL the buffer is purged, not promoted.
	if got := a.Flush(10 * time.Second); len(got) != 0 {
		t.Fatalf("expired buffer was promoted: %v", got)
	}
	if a.PendingCount() != 0 {
		t.Fatal("expired buffer survived flush")
	}
}

func TestEmptySummariesDropped(t *testing.T) {
	a, _ := newTestAggregator(2, 30*time.Second)

	a.Process("AAPL", report("Yahoo Finance", "Apple beats", "  "))
	story := a.Process("AAPL", report("AlphaVantage", "Apple beats estimates", "full summary"))
	if story == nil {
		t.Fatal("consensus not reached")
	}
	if len(story.Summaries) != 1 || story.Summaries[0] != "full summary" {
		t.Fatalf("summaries = %v, want only the non-empty one", story.Summaries)
	}
}

func TestClassifyImpact(t *testing.T) {
	cases := []struct {
		text string
		want model.ImpactTier
	}{
		{"Acme files for bankruptcy protection", model.ImpactCritical},
		{"Trading halted pending news", model.ImpactCritical},
		{"Globex announces acquisition of Acme", model.ImpactCritical},
		{"Acme beats earnings estimates", model.ImpactHigh},
		{"Revenue growth accelerates", model.ImpactHigh},
		{"Acme opens new office", model.ImpactNormal},
		// Critical outranks high when both appear.
		{"Merger talks boost revenue outlook", model.ImpactCritical},
	}
	for _, tc := range cases {
		if got := ClassifyImpact(tc.text); got != tc.want {
			t.Errorf("ClassifyImpact(%q) = %s, want %s", tc.text, got, tc.want)
		}
	}
}

func TestBuffersIsolatedPerSymbol(t *testing.T) {
	a, _ := newTestAggregator(2, 30*time.Second)

	a.Process("AAPL", report("Yahoo Finance", "Apple halted", ""))
	if s := a.Process("MSFT", report("AlphaVantage", "Microsoft halted", "")); s != nil {
		t.Fatal("reports for different symbols combined")
	}
	if a.PendingCount() != 2 {
		t.Fatalf("pending = %d, want 2", a.PendingCount())
	}
}
