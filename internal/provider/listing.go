package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// FetchFullListing returns every active symbol known to the listing
// sources. The primary host is tried first; on failure the secondary
// host is used when configured.
func (c *Client) FetchFullListing(ctx context.Context) ([]string, error) {
	symbols, err := c.fetchListingFrom(ctx, c.listingURL)
	if err == nil {
		return symbols, nil
	}

	if c.fallbackURL == "" {
		return nil, err
	}

	c.logger.Warn("primary listing source failed, trying fallback",
		"error", err,
	)

	symbols, fbErr := c.fetchListingFrom(ctx, c.fallbackURL)
	if fbErr != nil {
		return nil, fmt.Errorf("listing fallback failed: %w (primary: %v)", fbErr, err)
	}
	return symbols, nil
}

func (c *Client) fetchListingFrom(ctx context.Context, base string) ([]string, error) {
	query := url.Values{}
	query.Set("state", "active")

	var wire listingWire
	if err := c.getFrom(ctx, base, "/listing", query, &wire); err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}

	symbols := make([]string, 0, len(wire.Symbols))
	for _, sym := range wire.Symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		symbols = append(symbols, sym)
	}
	return symbols, nil
}
