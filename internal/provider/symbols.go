package provider

import "strings"

// indexAliases maps index symbols to the proxy tickers providers serve.
var indexAliases = map[string]string{
	"^GSPC": "SPY",
	"^IXIC": "QQQ",
	"^DJI":  "DIA",
}

// NormalizeSymbol maps internal symbol notation to provider notation:
// crypto pairs lose the quote suffix (BTC-USD -> BTC), FX pairs lose the
// =X marker (EURUSD=X -> EURUSD), and indices map to proxy tickers.
func NormalizeSymbol(symbol string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	if alias, ok := indexAliases[sym]; ok {
		return alias
	}

	if cut, found := strings.CutSuffix(sym, "=X"); found {
		return cut
	}

	if before, _, found := strings.Cut(sym, "-"); found && !strings.HasPrefix(sym, "^") {
		return before
	}

	return sym
}
