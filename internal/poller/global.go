package poller

import (
	"context"
	"time"

	"github.com/pmercer/marketwire/internal/model"
	"github.com/pmercer/marketwire/internal/provider"
)

// sweepGlobal pulls the cross-market feed once and routes each story to
// the symbols it tags.
func (p *Poller) sweepGlobal() {
	ctx, cancel := context.WithTimeout(p.ctx, p.cfg.RequestTimeout)
	defer cancel()

	start := time.Now()

	items, err := p.source.FetchGlobalNews(ctx)
	if err != nil {
		p.logger.Warn("global feed fetch failed", "err", err)
		return
	}

	routed := 0
	for _, item := range items {
		for _, tagged := range item.TaggedSymbols {
			symbol := provider.NormalizeSymbol(tagged)
			if !p.admitGlobal(symbol) {
				continue
			}
			item := item
			p.emit(model.RawEvent{
				Type:      model.EventNews,
				Symbol:    symbol,
				News:      &item,
				Timestamp: time.Now().UTC(),
			})
			routed++
		}
	}

	p.logger.Info("sweep complete",
		"loop", "global",
		"stories", len(items),
		"routed", routed,
		"duration", time.Since(start),
	)
}

// admitGlobal cross-references a tagged symbol against the full
// universe. Before the first listing sync the full universe is empty,
// so plain alphabetic tickers pass permissively rather than silencing
// the feed.
func (p *Poller) admitGlobal(symbol string) bool {
	if symbol == "" {
		return false
	}
	if p.universe.FullSize() == 0 {
		return isAlphabetic(symbol)
	}
	return p.universe.ContainsFull(symbol)
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return len(s) > 0
}
