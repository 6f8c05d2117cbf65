// Package ranking converts vector distances into confidence scores and
// filters and orders search results by them.
package ranking

import (
	"math"
	"sort"

	"github.com/ternarybob/soundbite/internal/models"
)

// Confidence maps a cosine distance in [0, 2] to a score in [0, 100].
// Out-of-range distances are clamped; NaN yields 0.
func Confidence(distance float64) float64 {
	if math.IsNaN(distance) {
		return 0
	}
	c := (1 - distance/2) * 100
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}

// Rank scores each candidate, drops those whose confidence is below
// threshold*100 and orders the rest by descending confidence. Candidates with
// equal confidence keep their input order. threshold is a fraction in [0, 1].
func Rank(candidates []models.SearchCandidate, threshold float64) []models.RankedSoundBite {
	minConfidence := threshold * 100

	ranked := make([]models.RankedSoundBite, 0, len(candidates))
	for _, c := range candidates {
		confidence := Confidence(c.Distance)
		if confidence < minConfidence {
			continue
		}
		ranked = append(ranked, models.RankedSoundBite{
			SoundBite:  c.SoundBite,
			Confidence: confidence,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	return ranked
}
