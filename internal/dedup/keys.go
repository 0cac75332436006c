package dedup

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/pmercer/marketwire/internal/model"
)

// Key derives the stable dedup key for a news item. The canonical URL
// identifies a story across polls when present; otherwise the lowercased
// headline and source pair stands in. Two sources carrying the same
// story under different URLs intentionally produce different keys, so
// cross-source corroboration reaches the consensus stage.
func Key(item model.NewsItem) string {
	var basis string
	if u := canonicalURL(item.URL); u != "" {
		basis = u
	} else {
		basis = strings.ToLower(strings.TrimSpace(item.Headline)) +
			"|" + strings.ToLower(strings.TrimSpace(item.Source))
	}
	sum := sha1.Sum([]byte(basis))
	return hex.EncodeToString(sum[:])
}

// canonicalURL strips the query, fragment, and trailing slash so
// tracking parameters do not defeat deduplication.
func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}
