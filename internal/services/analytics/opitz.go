package analytics

import "InlineRank/internal/domain/models"

// OpitzScore is the legacy heuristic kept for comparison with the composite
// scores. It is not normalized, so values are not comparable across batches.
//
//	0.42*potentialReturn*(10-offer) + 0.34/bollingerWidth + 0.16/var95
//
// A zero width or VaR drops its term.
func OpitzScore(potentialReturn, offer, bollingerWidth, var95 float64) float64 {
	score := 0.42 * potentialReturn * (models.Nominal - offer)
	if bollingerWidth != 0 {
		score += 0.34 / bollingerWidth
	}
	if var95 != 0 {
		score += 0.16 / var95
	}
	return score
}
