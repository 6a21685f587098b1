package enrich

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// canonicalArticle is the subset of an article that participates in the
// fingerprint. URL, timestamp and relevance are excluded so that cosmetic
// feed churn does not defeat deduplication.
type canonicalArticle struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
}

type canonicalInput struct {
	Ticker string             `json:"ticker"`
	Bars   []Bar              `json:"bars"`
	News   []canonicalArticle `json:"news"`
}

// Fingerprint reduces an Input to its canonical content and returns the
// SHA-256 hex digest of its serialization. Identical canonical content
// always yields the same digest; any change to price or news content
// changes it.
func Fingerprint(in Input) (string, error) {
	if in.Ticker == "" {
		return "", fmt.Errorf("fingerprint: empty ticker")
	}
	canonical := canonicalInput{
		Ticker: in.Ticker,
		Bars:   in.Bars,
		News:   make([]canonicalArticle, 0, len(in.Articles)),
	}
	if canonical.Bars == nil {
		canonical.Bars = []Bar{}
	}
	for _, a := range in.Articles {
		canonical.News = append(canonical.News, canonicalArticle{
			Title:   a.Title,
			Summary: a.Summary,
			Source:  a.Source,
		})
	}
	raw, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("fingerprint: marshal canonical input: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
