package dedup

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pmercer/marketwire/internal/model"
	"github.com/pmercer/marketwire/internal/store"
)

func TestKeyPrefersCanonicalURL(t *testing.T) {
	a := model.NewsItem{
		Source:   "Yahoo Finance",
		Headline: "Acme acquires Globex",
		URL:      "https://news.example.com/story/123?utm_source=feed#top",
	}
	b := model.NewsItem{
		Source:   "Yahoo Finance",
		Headline: "Acme Acquires Globex (updated)",
		URL:      "https://News.Example.com/story/123/",
	}
	if Key(a) != Key(b) {
		t.Fatal("same canonical URL produced different keys")
	}
}

func TestKeyFallsBackToHeadlineSource(t *testing.T) {
	a := model.NewsItem{Source: "Yahoo Finance", Headline: "Acme beats estimates"}
	b := model.NewsItem{Source: "yahoo finance", Headline: "ACME BEATS ESTIMATES "}
	if Key(a) != Key(b) {
		t.Fatal("headline|source key not case and whitespace insensitive")
	}

	c := model.NewsItem{Source: "AlphaVantage", Headline: "Acme beats estimates"}
	if Key(a) == Key(c) {
		t.Fatal("different sources without URLs should produce distinct keys")
	}
}

func TestKeyDiffersAcrossSourcesWithDistinctURLs(t *testing.T) {
	a := model.NewsItem{Source: "Yahoo Finance", Headline: "Acme halted", URL: "https://yahoo.example/a"}
	b := model.NewsItem{Source: "AlphaVantage", Headline: "Acme halted", URL: "https://av.example/b"}
	if Key(a) == Key(b) {
		t.Fatal("distinct URLs must not collapse to one key")
	}
}

func TestAdmitOnceOnly(t *testing.T) {
	ctx := context.Background()
	d := NewDeduper(DefaultConfig(), store.NewMemoryStore(), nil)

	item := model.NewsItem{Source: "Yahoo Finance", Headline: "Acme surges", URL: "https://yahoo.example/1"}

	if !d.Admit(ctx, item) {
		t.Fatal("first admission rejected")
	}
	if d.Admit(ctx, item) {
		t.Fatal("duplicate admitted")
	}
}

func TestAdmitSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	item := model.NewsItem{Source: "Yahoo Finance", Headline: "Acme surges", URL: "https://yahoo.example/1"}

	d1 := NewDeduper(DefaultConfig(), st, nil)
	if !d1.Admit(ctx, item) {
		t.Fatal("first admission rejected")
	}

	// Fresh deduper, empty memory tier, same store.
	d2 := NewDeduper(DefaultConfig(), st, nil)
	if d2.Admit(ctx, item) {
		t.Fatal("duplicate admitted after restart")
	}
	// The persistent hit backfills the memory tier.
	if d2.MemorySize() != 1 {
		t.Fatalf("memory tier size = %d, want 1", d2.MemorySize())
	}
}

func TestLRUEviction(t *testing.T) {
	s := newLRUSet(3)
	s.add("a")
	s.add("b")
	s.add("c")

	// Touch "a" so "b" becomes the eviction candidate.
	if !s.contains("a") {
		t.Fatal("a missing")
	}
	s.add("d")

	if s.contains("b") {
		t.Fatal("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if !s.contains(k) {
			t.Fatalf("%s missing after eviction", k)
		}
	}
	if s.len() != 3 {
		t.Fatalf("len = %d, want 3", s.len())
	}
}

func TestMemoryTierBounded(t *testing.T) {
	ctx := context.Background()
	cfg := Config{MemoryCapacity: 10, Retention: 24 * time.Hour}
	d := NewDeduper(cfg, store.NewMemoryStore(), nil)

	for i := 0; i < 50; i++ {
		item := model.NewsItem{
			Source:   "Yahoo Finance",
			Headline: fmt.Sprintf("story %d", i),
		}
		d.Admit(ctx, item)
	}

	if d.MemorySize() > 10 {
		t.Fatalf("memory tier grew past capacity: %d", d.MemorySize())
	}
}

func TestPruneRemovesOldRows(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	old := time.Now().UTC().Add(-48 * time.Hour)
	if err := st.MarkNewsSeen(ctx, "stale-key", old); err != nil {
		t.Fatal(err)
	}
	if err := st.MarkNewsSeen(ctx, "fresh-key", time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	d := NewDeduper(DefaultConfig(), st, nil)
	d.prune()

	seen, err := st.IsNewsSeen(ctx, "stale-key")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Fatal("stale key survived prune")
	}

	seen, err = st.IsNewsSeen(ctx, "fresh-key")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Fatal("fresh key pruned")
	}
}
