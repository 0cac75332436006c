package consensus

import (
	"strings"

	"github.com/pmercer/marketwire/internal/model"
)

// Classifier assigns an impact tier to story text.
type Classifier func(text string) model.ImpactTier

var criticalTerms = []string{
	"BANKRUPTCY",
	"BANKRUPT",
	"CRASH",
	"HALT",
	"HALTED",
	"ACQUISITION",
	"ACQUIRES",
	"MERGER",
	"APPROVAL",
	"GUIDANCE CUT",
	"LOWERED GUIDANCE",
	"FRAUD",
	"DELIST",
}

var highTerms = []string{
	"EARNINGS",
	"REVENUE",
	"GROWTH",
	"BEATS",
	"BEAT",
	"MISSES",
	"MISS",
	"SURGE",
	"RECORD",
	"UPGRADE",
	"DOWNGRADE",
	"PARTNERSHIP",
}

// ClassifyImpact is the default keyword classifier. Critical terms win
// over high terms; anything else is NORMAL.
func ClassifyImpact(text string) model.ImpactTier {
	upper := strings.ToUpper(text)
	for _, term := range criticalTerms {
		if strings.Contains(upper, term) {
			return model.ImpactCritical
		}
	}
	for _, term := range highTerms {
		if strings.Contains(upper, term) {
			return model.ImpactHigh
		}
	}
	return model.ImpactNormal
}
