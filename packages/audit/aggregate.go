// Package audit combines extractor results into one scored, classified,
// revenue-projected AuditResult.
package audit

import (
	"math"

	"sitepulse/packages/domain"
)

// Fixed weight table. A missing extractor's weight leaves the denominator
// entirely; it is never zero-filled.
var scoreWeights = map[string]float64{
	"performance": 0.30,
	"mobile":      0.20,
	"seo":         0.20,
	"local":       0.15,
	"conversion":  0.10,
	"technical":   0.05,
}

// AggregateScore renormalizes the weighted sum over the extractors that
// produced a score. No results at all means 0.
func AggregateScore(results []domain.ExtractorResult) int {
	var weighted, weightSum float64
	for _, r := range results {
		if !r.Present {
			continue
		}
		w, ok := scoreWeights[r.Name]
		if !ok {
			continue
		}
		weighted += float64(r.Score) * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0
	}
	return int(math.Round(weighted / weightSum))
}
