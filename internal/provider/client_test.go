package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbol"); got != "NVDA" {
			t.Errorf("symbol query = %q, want NVDA", got)
		}
		if got := r.URL.Query().Get("apikey"); got != "testkey" {
			t.Errorf("apikey query = %q, want testkey", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"symbol": "NVDA",
			"price":  181.25,
			"ts":     1724800000,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "testkey", WithTimeout(5*time.Second))

	quote, err := c.FetchPrice(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("FetchPrice: %v", err)
	}
	if quote.Price != 181.25 {
		t.Errorf("Price = %g, want 181.25", quote.Price)
	}
	if quote.Symbol != "NVDA" {
		t.Errorf("Symbol = %q, want NVDA", quote.Symbol)
	}
}

func TestFetchNewsLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"source": "Yahoo", "headline": "NVDA beats earnings", "summary": "strong quarter", "url": "http://x/1"},
				{"publisher": "Reuters", "title": "NVDA raises guidance", "url": "http://x/2"},
				{"source": "Bad", "url": "http://x/3"}, // no headline, skipped
				{"source": "Extra", "headline": "third item", "url": "http://x/4"},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	items, err := c.FetchNews(context.Background(), "NVDA", 2)
	if err != nil {
		t.Fatalf("FetchNews: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (limit applied)", len(items))
	}
	if items[0].Source != "Yahoo" || items[0].Headline != "NVDA beats earnings" {
		t.Errorf("item[0] = %+v", items[0])
	}
	if items[1].Source != "Reuters" || items[1].Headline != "NVDA raises guidance" {
		t.Errorf("item[1] = %+v (publisher/title aliases not applied)", items[1])
	}
	if items[0].Sentiment != "NEUTRAL" {
		t.Errorf("missing sentiment not defaulted: %q", items[0].Sentiment)
	}
}

func TestFetchGlobalNewsTaggedSymbols(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"source": "Wire", "headline": "Chip sector rallies", "symbols": []string{"NVDA", "AMD"}},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "")

	items, err := c.FetchGlobalNews(context.Background())
	if err != nil {
		t.Fatalf("FetchGlobalNews: %v", err)
	}
	if len(items) != 1 || len(items[0].TaggedSymbols) != 2 {
		t.Fatalf("items = %+v, want one item with two tagged symbols", items)
	}
}

func TestFetchFullListingFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"symbols": []string{"nvda ", "TSLA", ""}})
	}))
	defer fallback.Close()

	c := NewClient(primary.URL, "",
		WithListingURL(primary.URL),
		WithFallbackURL(fallback.URL),
		WithRetries(0, time.Millisecond),
	)

	symbols, err := c.FetchFullListing(context.Background())
	if err != nil {
		t.Fatalf("FetchFullListing: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "NVDA" || symbols[1] != "TSLA" {
		t.Errorf("symbols = %v, want [NVDA TSLA]", symbols)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"symbol": "NVDA", "valid": true})
	}))
	defer server.Close()

	c := NewClient(server.URL, "", WithRetries(3, time.Millisecond))

	valid, err := c.Validate(context.Background(), "NVDA")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !valid {
		t.Error("Validate = false, want true")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad symbol", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL, "", WithRetries(3, time.Millisecond))

	_, err := c.Validate(context.Background(), "???")
	if err == nil {
		t.Fatal("Validate = nil error, want APIError")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want wrapped *APIError", err)
	}
	if apiErr.IsRetryable() {
		t.Error("400 reported as retryable")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retries on 4xx)", calls.Load())
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"NVDA", "NVDA"},
		{"btc-usd", "BTC"},
		{"EURUSD=X", "EURUSD"},
		{"^GSPC", "SPY"},
		{"^IXIC", "QQQ"},
		{" tsla ", "TSLA"},
	}

	for _, tt := range tests {
		if got := NormalizeSymbol(tt.in); got != tt.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
