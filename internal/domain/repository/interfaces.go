package repository

import (
	"context"

	"InlineRank/internal/domain/models"
)

// ProductSource lists the deduplicated product batch for a filter.
type ProductSource interface {
	FetchProductBatch(ctx context.Context, f ProductFilter) ([]models.ProductSnapshot, error)
}

// HistorySource returns the daily price history of one instrument.
type HistorySource interface {
	FetchPriceHistory(ctx context.Context, productID int64) (models.PriceHistory, error)
}

// SpotSource returns the latest underlying price, or nil when none is known.
type SpotSource interface {
	FetchLatestUnderlyingPrice(ctx context.Context, productID int64) (*float64, error)
}

// MarketData is the full upstream collaborator.
type MarketData interface {
	ProductSource
	HistorySource
	SpotSource
}

// HistoryArchive keeps fetched histories so a failed upstream call can fall back to them.
type HistoryArchive interface {
	SaveHistory(ctx context.Context, productID int64, h models.PriceHistory) error
	LoadHistory(ctx context.Context, productID int64) (models.PriceHistory, error)
	Close() error
}

// RankingPublisher fans a scored batch out to downstream consumers.
type RankingPublisher interface {
	PublishRanking(ctx context.Context, r *models.Ranking) error
	Close() error
}

type Metrics interface {
	RecordBatch(size, excluded int, seconds float64)
	RecordFetchError(kind string)
	RecordCacheLookup(hit bool)
	RecordLatency(op string, seconds float64)
}
