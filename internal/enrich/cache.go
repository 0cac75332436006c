package enrich

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/pmercer/marketwire/internal/model"
	"github.com/pmercer/marketwire/internal/store"
)

// CachedNarrator fronts a Narrator with the persistent analysis cache.
// The same symbol and headline never pay for analysis twice. Verdicts
// are cached as JSON; a corrupt row falls through to the narrator.
type CachedNarrator struct {
	inner  Narrator
	store  store.Store
	logger *slog.Logger
}

// NewCachedNarrator wraps a narrator with cache lookups.
func NewCachedNarrator(inner Narrator, st store.Store, logger *slog.Logger) *CachedNarrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedNarrator{inner: inner, store: st, logger: logger}
}

func (c *CachedNarrator) Analyze(ctx context.Context, story *model.VerifiedStory) (Verdict, error) {
	hash := contentHash(story.Symbol, story.Headline)

	if raw, ok, err := c.store.GetAnalysisCache(ctx, hash); err != nil {
		c.logger.Warn("analysis cache lookup failed", "error", err)
	} else if ok {
		var verdict Verdict
		if err := json.Unmarshal([]byte(raw), &verdict); err == nil {
			return verdict, nil
		}
		c.logger.Warn("corrupt analysis cache row, re-analyzing", "hash", hash)
	}

	verdict, err := c.inner.Analyze(ctx, story)
	if err != nil {
		return Verdict{}, err
	}

	if raw, err := json.Marshal(verdict); err == nil {
		if err := c.store.StoreAnalysisCache(ctx, hash, string(raw), time.Now().UTC()); err != nil {
			c.logger.Warn("analysis cache store failed", "error", err)
		}
	}
	return verdict, nil
}

// contentHash keys the cache on the normalized symbol and headline.
func contentHash(symbol, headline string) string {
	basis := strings.ToUpper(strings.TrimSpace(symbol)) + "|" +
		strings.ToLower(strings.TrimSpace(headline))
	sum := sha256.Sum256([]byte(basis))
	return hex.EncodeToString(sum[:])
}
