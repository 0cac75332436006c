package pipeline

import (
	"context"

	"github.com/pmercer/marketwire/internal/model"
)

// The command surface is what presentation clients drive. Each method
// is safe to call from any goroutine.

// BindSymbolCommands installs the universe command target. The engine
// and the universe manager reference each other, so one side binds
// after construction, before Start.
func (e *Engine) BindSymbolCommands(sc SymbolCommands) {
	e.symbols = sc
}

// SetMode switches alert delivery between AUTO and MANUAL.
func (e *Engine) SetMode(mode model.DeliveryMode) {
	e.queue.SetMode(mode)
}

// RequestNext delivers the next matching alert on demand.
func (e *Engine) RequestNext() bool {
	return e.queue.RequestNext()
}

// SetFilter scopes alert delivery to one symbol, or ALL.
func (e *Engine) SetFilter(symbol string) {
	e.queue.SetFilter(symbol)
}

// AddSymbols tracks a batch of symbols and reports per-symbol outcomes.
func (e *Engine) AddSymbols(ctx context.Context, symbols []string) map[string]bool {
	if e.symbols == nil {
		return nil
	}
	return e.symbols.AddSymbols(ctx, symbols)
}

// RemoveSymbol stops tracking a symbol.
func (e *Engine) RemoveSymbol(ctx context.Context, symbol string) {
	if e.symbols == nil {
		return
	}
	e.symbols.RemoveSymbol(ctx, symbol)
}

// TogglePriority flips a symbol's priority status.
func (e *Engine) TogglePriority(ctx context.Context, symbol string) bool {
	if e.symbols == nil {
		return false
	}
	return e.symbols.TogglePriority(ctx, symbol)
}
