//go:build wireinject
// +build wireinject

package di

import (
	"FuelPricer/internal/usecase"
	"FuelPricer/pkg/config"
	"FuelPricer/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideAuditPublisher,

		// Repositories and model client
		ProvideHistoryStore,
		ProvideFeatureColumns,
		ProvideDemandModel,

		// Pricing
		ProvideEngine,
		ProvideRecommender,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeRecommender wires the application service without the HTTP
// server, for one-shot CLI use.
func InitializeRecommender(cfg *config.Config) (*usecase.Recommender, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideCache,
		ProvideAuditPublisher,
		ProvideHistoryStore,
		ProvideFeatureColumns,
		ProvideDemandModel,
		ProvideEngine,
		ProvideRecommender,
	)
	return &usecase.Recommender{}, nil
}
