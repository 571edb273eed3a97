package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"InlineRank/internal/domain/repository"
	"InlineRank/internal/handler/api"
	internalrepo "InlineRank/internal/repository"
	"InlineRank/internal/service/cache"
	"InlineRank/internal/service/sg"
	"InlineRank/internal/services/analytics"
	"InlineRank/internal/services/features"
	"InlineRank/internal/usecase"
	pkgch "InlineRank/pkg/clickhouse"
	"InlineRank/pkg/config"
	xhttp "InlineRank/pkg/http"
	pkgkafka "InlineRank/pkg/kafka"
	applogger "InlineRank/pkg/logger"
	"InlineRank/pkg/metrics"
	"InlineRank/pkg/queue"
	"InlineRank/pkg/server"
)

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
}

// ProvideRegistry creates the Prometheus registry with process and Go collectors.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideMarketData creates the upstream client.
func ProvideMarketData(cfg *config.Config, l *applogger.Logger) (*sg.Client, error) {
	c, err := sg.New(sg.Config{
		BaseURL:            cfg.Upstream.BaseURL,
		PageSize:           cfg.Upstream.PageSize,
		Timeout:            cfg.Upstream.Timeout,
		RPS:                cfg.Upstream.RPS,
		Burst:              cfg.Upstream.Burst,
		BreakerMaxFailures: cfg.Upstream.Breaker.MaxFailures,
		BreakerOpenTimeout: cfg.Upstream.Breaker.OpenTimeout,
		BreakerInterval:    cfg.Upstream.Breaker.Interval,
	}, sg.WithLogger(l))
	if err != nil {
		return nil, fmt.Errorf("upstream client: %w", err)
	}
	return c, nil
}

// ProvideRedisClient returns nil unless the redis cache backend is selected.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if cfg.Cache.Backend != "redis" {
		return nil
	}
	return cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
	})
}

// ProvideSpotCache layers an in-process cache over Redis when Redis is configured.
func ProvideSpotCache(cfg *config.Config, rdb *redis.Client) cache.SpotCache {
	mem := cache.NewMemorySpotCache(cfg.Ranking.SpotCacheTTL)
	if rdb == nil {
		return mem
	}
	return cache.NewLayeredSpotCache(mem, cache.NewRedisSpotCache(rdb, cfg.Cache.Redis.Prefix, cfg.Ranking.SpotCacheTTL))
}

// ProvideHistoryArchive uses ClickHouse when enabled, otherwise an in-process archive.
func ProvideHistoryArchive(cfg *config.Config, l *applogger.Logger) (repository.HistoryArchive, error) {
	if !cfg.ClickHouse.Enabled {
		return internalrepo.NewMemoryHistoryArchive(), nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := pkgch.NewClient(ctx,
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	archive := internalrepo.NewCHHistoryArchive(client, l)
	if err := archive.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvidePublisher uses Kafka when enabled, otherwise drops rankings.
func ProvidePublisher(cfg *config.Config, reg *prometheus.Registry) (repository.RankingPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithTopic(cfg.Kafka.Topic),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaRankingPublisher(producer), nil
}

func ProvideStatsCalculator(cfg *config.Config) *features.Calculator {
	return features.NewCalculator(cfg.Ranking.Lookback, cfg.Ranking.VaRConfidence)
}

// ProvideEngine builds the ranking engine with the configured score weights.
func ProvideEngine(cfg *config.Config, stats *features.Calculator, l *applogger.Logger) *analytics.Engine {
	w := cfg.Ranking.Weights
	scorer := analytics.NewScorer(analytics.WithWeights(analytics.Weights{
		Return:         w.Return,
		Distance:       w.Distance,
		Bollinger:      w.Bollinger,
		VaR:            w.VaR,
		Expiry:         w.Expiry,
		Prob:           w.Prob,
		ExpectedReturn: w.ExpectedReturn,
		Sigma:          w.Sigma,
		TailRisk:       w.TailRisk,
	}))
	return analytics.NewEngine(
		analytics.WithStatsCalculator(stats),
		analytics.WithScorer(scorer),
		analytics.WithLogger(l),
	)
}

func ProvidePool(cfg *config.Config, l *applogger.Logger) *queue.Pool {
	return queue.NewPool(queue.QueueConfig{
		Workers:    cfg.Ranking.Workers,
		RetryLimit: cfg.Ranking.RetryLimit,
		RetryDelay: cfg.Ranking.RetryDelay,
	}, queue.WithLogger(l))
}

// ProvideRankingUseCase creates the ranking use case.
func ProvideRankingUseCase(
	market *sg.Client,
	engine *analytics.Engine,
	archive repository.HistoryArchive,
	spots cache.SpotCache,
	pub repository.RankingPublisher,
	m repository.Metrics,
	pool *queue.Pool,
	l *applogger.Logger,
) *usecase.RankingUseCase {
	return usecase.NewRankingUseCase(market, engine,
		usecase.WithArchive(archive),
		usecase.WithSpotCache(spots),
		usecase.WithPublisher(pub),
		usecase.WithMetrics(m),
		usecase.WithPool(pool),
		usecase.WithLogger(l),
	)
}

func ProvideHistoryUseCase(market *sg.Client, archive repository.HistoryArchive, stats *features.Calculator, l *applogger.Logger) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(market, archive, stats, l)
}

// ProvideHandlers lists every route group served by the app.
func ProvideHandlers(cfg *config.Config, rank *usecase.RankingUseCase, hist *usecase.HistoryUseCase, l *applogger.Logger) []xhttp.Handler {
	return []xhttp.Handler{
		api.NewRankingsHandler(l, rank),
		api.NewHistoryHandler(l, hist),
		api.NewStreamHandler(l, rank, cfg.Ranking.RefreshInterval),
	}
}

func ProvideHTTPServer(cfg *config.Config, handlers []xhttp.Handler, reg *prometheus.Registry, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, reg))
	}
	return xhttp.NewServer(handlers, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	archive repository.HistoryArchive,
	pub repository.RankingPublisher,
	rdb *redis.Client,
) *server.App {
	app := server.New(cfg, l, srv, archive, pub)
	if rdb != nil {
		app.AddCloser("redis", rdb)
	}
	return app
}
