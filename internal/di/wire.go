//go:build wireinject
// +build wireinject

package di

import (
	"InlineRank/pkg/config"
	"InlineRank/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Collaborators
		ProvideMarketData,
		ProvideRedisClient,
		ProvideSpotCache,
		ProvideHistoryArchive,
		ProvidePublisher,

		// Engine
		ProvideStatsCalculator,
		ProvideEngine,
		ProvidePool,

		// Use cases
		ProvideRankingUseCase,
		ProvideHistoryUseCase,

		// HTTP
		ProvideHandlers,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
