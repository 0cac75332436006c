package enrich

import (
	"fmt"
	"strings"

	"github.com/pmercer/marketwire/internal/model"
)

// ScoreFundamentals grades a report on a 0-100 scale with the reasons
// behind each adjustment. The baseline is 50.
func ScoreFundamentals(report model.FundamentalsReport) (int, []string) {
	score := 50
	var reasons []string

	if report.RevenueGrowth > 0.10 {
		score += 20
		reasons = append(reasons, fmt.Sprintf("revenue growth %.0f%%", report.RevenueGrowth*100))
	} else if report.RevenueGrowth < 0 {
		score -= 20
		reasons = append(reasons, fmt.Sprintf("revenue shrinking %.0f%%", report.RevenueGrowth*100))
	}

	if report.NetMargin > 0.15 {
		score += 15
		reasons = append(reasons, fmt.Sprintf("healthy net margin %.0f%%", report.NetMargin*100))
	}

	if report.DebtToEquity > 2.0 {
		score -= 15
		reasons = append(reasons, fmt.Sprintf("leveraged balance sheet, D/E %.1f", report.DebtToEquity))
	}

	switch strings.ToUpper(report.Guidance) {
	case "RAISED":
		score += 25
		reasons = append(reasons, "guidance raised")
	case "LOWERED":
		score -= 30
		reasons = append(reasons, "guidance lowered")
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score, reasons
}

// FundamentalsLabel maps a score to its verdict band.
func FundamentalsLabel(score int) string {
	switch {
	case score >= 75:
		return "STRONG"
	case score >= 50:
		return "STABLE"
	case score >= 25:
		return "WEAK"
	default:
		return "DISTRESSED"
	}
}
