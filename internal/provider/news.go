package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pmercer/marketwire/internal/model"
)

// FetchNews returns up to limit recent news items for a symbol.
func (c *Client) FetchNews(ctx context.Context, symbol string, limit int) ([]model.NewsItem, error) {
	query := url.Values{}
	query.Set("symbol", NormalizeSymbol(symbol))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("sort", "LATEST")

	var wire newsWire
	if err := c.get(ctx, "/news", query, &wire); err != nil {
		return nil, fmt.Errorf("fetch news %s: %w", symbol, err)
	}

	return convertNews(wire.Items, limit), nil
}

// FetchGlobalNews pulls the latest market-wide news firehose. Items carry
// provider-tagged symbols rather than being scoped to one symbol.
func (c *Client) FetchGlobalNews(ctx context.Context) ([]model.NewsItem, error) {
	query := url.Values{}
	query.Set("sort", "LATEST")

	var wire newsWire
	if err := c.get(ctx, "/news/global", query, &wire); err != nil {
		return nil, fmt.Errorf("fetch global news: %w", err)
	}

	return convertNews(wire.Items, 0), nil
}

// convertNews maps wire items to model items, skipping entries with no
// usable headline. limit 0 means no cap.
func convertNews(items []newsItemWire, limit int) []model.NewsItem {
	out := make([]model.NewsItem, 0, len(items))
	for _, w := range items {
		headline := w.headline()
		if headline == "" {
			continue
		}

		sentiment := w.Sentiment
		if sentiment == "" {
			sentiment = "NEUTRAL"
		}

		out = append(out, model.NewsItem{
			Source:        w.source(),
			Headline:      headline,
			Summary:       w.Summary,
			Sentiment:     sentiment,
			URL:           w.URL,
			TaggedSymbols: w.Symbols,
			PublishedAt:   w.publishedAt(),
		})

		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
