package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pmercer/marketwire/internal/model"
)

// HistorySource supplies recent prices for the technical read.
type HistorySource interface {
	GetPriceHistory(ctx context.Context, symbol string, since time.Time) ([]model.PricePoint, error)
}

// Config holds enrichment tuning.
type Config struct {
	HistoryWindow time.Duration // price lookback for the technical signal
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{HistoryWindow: 30 * 24 * time.Hour}
}

// Enricher builds alert items from verified stories and fundamentals.
type Enricher struct {
	cfg      Config
	narrator Narrator
	history  HistorySource
	logger   *slog.Logger
}

// NewEnricher creates an Enricher. narrator and history may be nil, in
// which case the corresponding layer is skipped.
func NewEnricher(cfg Config, narrator Narrator, history HistorySource, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{cfg: cfg, narrator: narrator, history: history, logger: logger}
}

// BuildStoryAlert renders a verified story into a deliverable alert.
// Narrator failure degrades to a news-only payload.
func (e *Enricher) BuildStoryAlert(ctx context.Context, story *model.VerifiedStory) model.AlertItem {
	payload := model.AlertPayload{
		Headline:    story.Headline,
		Description: story.Summary(),
		Sources:     story.Sources,
		URL:         story.URL,
		Impact:      story.Impact,
	}

	verdict := "NEWS ONLY"
	if e.narrator != nil {
		v, err := e.narrator.Analyze(ctx, story)
		if err != nil {
			e.logger.Warn("narrator failed, degrading to news-only alert",
				"symbol", story.Symbol, "error", err)
		} else {
			verdict = v.String()
		}
	}

	if tech := e.technicalLine(ctx, story.Symbol); tech != "" {
		verdict = verdict + " | " + tech
	}
	payload.Verdict = verdict

	return model.NewAlertItem(story.Symbol, payload)
}

// BuildFundamentalsAlert renders a fundamentals report into an alert.
func (e *Enricher) BuildFundamentalsAlert(ctx context.Context, symbol string, report model.FundamentalsReport) model.AlertItem {
	score, reasons := ScoreFundamentals(report)
	label := FundamentalsLabel(score)

	payload := model.AlertPayload{
		Headline:     fmt.Sprintf("%s fundamentals check: %s", symbol, label),
		Description:  strings.Join(reasons, "; "),
		Verdict:      fmt.Sprintf("%s (score %d/100)", label, score),
		Fundamentals: fmt.Sprintf("score=%d growth=%.2f margin=%.2f d/e=%.2f guidance=%s",
			score, report.RevenueGrowth, report.NetMargin, report.DebtToEquity, report.Guidance),
		Impact: model.ImpactNormal,
	}
	if score <= 25 {
		payload.Impact = model.ImpactHigh
	}

	return model.NewAlertItem(symbol, payload)
}

// technicalLine computes the technical signal for a symbol, best effort.
func (e *Enricher) technicalLine(ctx context.Context, symbol string) string {
	if e.history == nil {
		return ""
	}
	since := time.Now().UTC().Add(-e.cfg.HistoryWindow)
	points, err := e.history.GetPriceHistory(ctx, symbol, since)
	if err != nil {
		e.logger.Warn("price history unavailable for technical signal",
			"symbol", symbol, "error", err)
		return ""
	}
	return TechnicalSignal(points)
}
