package enrich

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/pmercer/marketwire/internal/model"
)

// Verdict is a narrator's read on a verified story.
type Verdict struct {
	Action     string  // AGGRESSIVE BUY, URGENT SELL, MONITOR
	Confidence float64 // 0..1
	Rationale  string
}

// String renders the verdict in display form.
func (v Verdict) String() string {
	return fmt.Sprintf("%s (%.0f%% confidence) - %s", v.Action, v.Confidence*100, v.Rationale)
}

// Narrator produces a verdict for a verified story. Implementations may
// call out to external analysis services; errors degrade the alert to
// news-only.
type Narrator interface {
	Analyze(ctx context.Context, story *model.VerifiedStory) (Verdict, error)
}

var bullishTerms = []string{
	"ACQUISITION", "SURGE", "RECORD", "BEATS", "GROWTH", "AI", "PARTNERSHIP",
}

var bearishTerms = []string{
	"BANKRUPTCY", "CRASH", "HALT", "LOWERED", "MISSES", "LAWSUIT", "FRAUD",
}

// KeywordNarrator is the built-in persona. It reacts to headline
// keywords with action and confidence bands, no external calls.
type KeywordNarrator struct{}

func (KeywordNarrator) Analyze(_ context.Context, story *model.VerifiedStory) (Verdict, error) {
	text := strings.ToUpper(story.Headline + " " + story.Summary())

	if term := firstMatch(text, bearishTerms); term != "" {
		return Verdict{
			Action:     "URGENT SELL",
			Confidence: 0.90 + rand.Float64()*0.10,
			Rationale:  fmt.Sprintf("bearish catalyst detected: %s", strings.ToLower(term)),
		}, nil
	}

	if term := firstMatch(text, bullishTerms); term != "" {
		return Verdict{
			Action:     "AGGRESSIVE BUY",
			Confidence: 0.85 + rand.Float64()*0.14,
			Rationale:  fmt.Sprintf("bullish catalyst detected: %s", strings.ToLower(term)),
		}, nil
	}

	return Verdict{
		Action:     "MONITOR",
		Confidence: 0.40 + rand.Float64()*0.20,
		Rationale:  "no decisive catalyst in headline",
	}, nil
}

func firstMatch(text string, terms []string) string {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return term
		}
	}
	return ""
}
