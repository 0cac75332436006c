package enrich

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/pmercer/marketwire/internal/model"
)

const (
	rsiPeriod     = 14
	rsiOversold   = 30.0
	rsiOverbought = 70.0
)

// TechnicalSignal summarizes recent price action into a one-line read.
// RSI extremes dominate; otherwise the trend slope of the recent closes
// decides. Returns an empty string when there is not enough history.
func TechnicalSignal(history []model.PricePoint) string {
	if len(history) < rsiPeriod+1 {
		return ""
	}

	rsi := relativeStrength(history, rsiPeriod)
	switch {
	case rsi <= rsiOversold:
		return fmt.Sprintf("RSI %.0f oversold, potential reversal zone", rsi)
	case rsi >= rsiOverbought:
		return fmt.Sprintf("RSI %.0f overbought, extended", rsi)
	}

	slope := trendSlope(history)
	switch {
	case slope > 0:
		return fmt.Sprintf("RSI %.0f neutral, uptrend intact", rsi)
	case slope < 0:
		return fmt.Sprintf("RSI %.0f neutral, downtrend pressure", rsi)
	default:
		return fmt.Sprintf("RSI %.0f neutral, sideways", rsi)
	}
}

// relativeStrength computes Wilder-smoothed RSI over the final period
// of the history.
func relativeStrength(history []model.PricePoint, period int) float64 {
	var avgGain, avgLoss float64

	// Seed with a simple average over the first period.
	for i := 1; i <= period; i++ {
		delta := history[i].Price - history[i-1].Price
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(history); i++ {
		delta := history[i].Price - history[i-1].Price
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// trendSlope fits a least-squares line through the closes and returns
// its slope per observation.
func trendSlope(history []model.PricePoint) float64 {
	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, p := range history {
		xs[i] = float64(i)
		ys[i] = p.Price
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope
}
