package service

import (
	"InlineRank/internal/domain/models"
)

// Ranker turns a batch of instrument inputs into a scored ranking. Pure: it
// performs no I/O and keeps no state between calls.
type Ranker interface {
	Rank(inputs []models.InstrumentInput) *models.Ranking
}

// StatsCalculator derives the history statistics of a single instrument.
type StatsCalculator interface {
	Compute(h models.PriceHistory) models.SeriesStats
}
