package di

import (
	"context"
	"fmt"
	"time"

	domrepo "FuelPricer/internal/domain/repository"
	domsvc "FuelPricer/internal/domain/service"
	"FuelPricer/internal/pricing"
	internalrepo "FuelPricer/internal/repository"
	svcmodel "FuelPricer/internal/services/model"
	"FuelPricer/internal/usecase"
	"FuelPricer/pkg/cache"
	pkgch "FuelPricer/pkg/clickhouse"
	"FuelPricer/pkg/config"
	pkgkafka "FuelPricer/pkg/kafka"
	applogger "FuelPricer/pkg/logger"
	"FuelPricer/pkg/metrics"
	"FuelPricer/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and initializes the
// history schema. Returns nil when history is served from CSV.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.History.Backend != "clickhouse" {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS fuelpricer",
		"CREATE TABLE IF NOT EXISTS fuelpricer.daily_history (" +
			"date Date, price Float64, cost Float64, " +
			"comp1_price Float64, comp2_price Float64, comp3_price Float64, " +
			"volume Float64) ENGINE=MergeTree ORDER BY date",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideHistoryStore selects the history backend from config.
func ProvideHistoryStore(cfg *config.Config, chClient *pkgch.Client, l *applogger.Logger) (domrepo.HistoryStore, error) {
	switch cfg.History.Backend {
	case "clickhouse":
		if chClient == nil {
			return nil, fmt.Errorf("clickhouse backend selected but no client")
		}
		table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
		store := internalrepo.NewCHHistoryStore(chClient, table)
		store.SetLogger(l)
		return store, nil
	case "csv":
		store := internalrepo.NewCSVHistoryStore(cfg.History.CSVPath)
		store.SetLogger(l)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}
}

// ProvideFeatureColumns loads the training-time feature schema.
func ProvideFeatureColumns(cfg *config.Config) ([]string, error) {
	fc, err := svcmodel.LoadFeatureConfig(cfg.Model.FeatureConfigPath)
	if err != nil {
		return nil, fmt.Errorf("feature config: %w", err)
	}
	return fc.FeatureColumns, nil
}

// ProvideDemandModel creates the HTTP client for the model service.
func ProvideDemandModel(cfg *config.Config, columns []string) domsvc.DemandModel {
	return svcmodel.NewHTTPVolumeModel(cfg, columns)
}

// ProvideCache creates the recommendation cache: Redis when enabled,
// otherwise in-process memory.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	svc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Cache.Redis.Host),
		cache.WithRedisPort(cfg.Cache.Redis.Port),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return svc, nil
}

// ProvideAuditPublisher creates the Kafka audit trail, or a no-op
// publisher when auditing is disabled.
func ProvideAuditPublisher(cfg *config.Config, l *applogger.Logger) (domrepo.AuditPublisher, error) {
	if !cfg.Audit.Enabled {
		return internalrepo.NopAuditPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Audit.Brokers),
		pkgkafka.WithCompression(cfg.Audit.Compression),
		pkgkafka.WithRequiredAcks(cfg.Audit.RequiredAcks),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaAuditPublisher(producer, cfg.Audit.Topic)
	pub.SetLogger(l)
	return pub, nil
}

// ProvideEngine creates the pricing engine from the configured rules.
func ProvideEngine(cfg *config.Config) *pricing.Engine {
	return pricing.NewEngine(pricing.Rules{
		MinPrice:            cfg.Pricing.MinPrice,
		MaxPrice:            cfg.Pricing.MaxPrice,
		GridStep:            cfg.Pricing.GridStep,
		MaxAbsChange:        cfg.Pricing.MaxAbsChange,
		MinMarginPerLiter:   cfg.Pricing.MinMarginPerLiter,
		CompetitiveMaxDelta: cfg.Pricing.CompetitiveMaxDelta,
	})
}

// ProvideRecommender creates the application service.
func ProvideRecommender(
	engine *pricing.Engine,
	model domsvc.DemandModel,
	store domrepo.HistoryStore,
	cacheSvc cache.Service,
	audit domrepo.AuditPublisher,
	m domrepo.Metrics,
	l *applogger.Logger,
	columns []string,
	cfg *config.Config,
) *usecase.Recommender {
	return usecase.NewRecommender(engine, model, store, cacheSvc, cfg.Cache.TTL, audit, m, l, columns)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	rec *usecase.Recommender,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	audit domrepo.AuditPublisher,
) *server.App {
	return server.New(cfg, rec, chClient, cacheSvc, audit)
}
