// Package scoring runs the per-ticker pipeline: enrich, fingerprint,
// dedup, call the oracle, persist. Batch runs fan the pipeline out over a
// ticker list and track completion on a score run row.
package scoring

import (
	"time"

	"indexscore/internal/models"
)

// FreshnessWindow is the maximum age of a prior score for an identical
// input fingerprint to still count as a duplicate. The bound is
// inclusive: a score exactly this old is reused.
const FreshnessWindow = 6 * time.Hour

// ShouldReuse reports whether prev is a fresh score for the same input.
// A nil prev (no fingerprint match) never reuses.
func ShouldReuse(prev *models.Score, now time.Time) bool {
	if prev == nil {
		return false
	}
	age := now.Sub(prev.TS)
	return age >= 0 && age <= FreshnessWindow
}
