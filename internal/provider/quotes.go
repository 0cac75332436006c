package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pmercer/marketwire/internal/model"
)

// FetchPrice returns the current price for a symbol.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (model.PriceQuote, error) {
	query := url.Values{}
	query.Set("symbol", NormalizeSymbol(symbol))

	var wire quoteWire
	if err := c.get(ctx, "/quote", query, &wire); err != nil {
		return model.PriceQuote{}, fmt.Errorf("fetch price %s: %w", symbol, err)
	}

	ts := time.Now().UTC()
	if wire.TS > 0 {
		ts = time.Unix(wire.TS, 0).UTC()
	}

	return model.PriceQuote{
		Symbol:    symbol,
		Price:     wire.Price,
		Timestamp: ts,
	}, nil
}

// FetchPriceHistory returns price points for symbol at or after since.
func (c *Client) FetchPriceHistory(ctx context.Context, symbol string, since time.Time) ([]model.PricePoint, error) {
	query := url.Values{}
	query.Set("symbol", NormalizeSymbol(symbol))
	if !since.IsZero() {
		query.Set("since", strconv.FormatInt(since.Unix(), 10))
	}

	var wire historyWire
	if err := c.get(ctx, "/history", query, &wire); err != nil {
		return nil, fmt.Errorf("fetch history %s: %w", symbol, err)
	}

	points := make([]model.PricePoint, 0, len(wire.Points))
	for _, p := range wire.Points {
		points = append(points, model.PricePoint{
			Timestamp: time.Unix(p.TS, 0).UTC(),
			Price:     p.Price,
		})
	}
	return points, nil
}

// Validate probes whether a symbol is recognized by the provider.
func (c *Client) Validate(ctx context.Context, symbol string) (bool, error) {
	query := url.Values{}
	query.Set("symbol", NormalizeSymbol(symbol))

	var wire validateWire
	if err := c.get(ctx, "/validate", query, &wire); err != nil {
		return false, fmt.Errorf("validate %s: %w", symbol, err)
	}
	return wire.Valid, nil
}
