package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/consumer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/stopwords"
	ingesthandler "github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/loader"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	stop, err := stopwords.New(cfg.Engine.AllStopWords())
	if err != nil {
		return fmt.Errorf("building stop words: %w", err)
	}
	engine := indexer.NewEngine(stop)
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"stop_words", stop.Len(),
	)

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.Enabled {
		shutdownMetrics := m.StartServer(cfg.Metrics.Port)
		defer shutdownWithTimeout("metrics server", shutdownMetrics, cfg.Server.ShutdownTimeout)
	}

	checker := health.NewChecker()

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := connectRedis(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
			checker.Register("redis", health.PingCheck(nil, false))
		} else {
			defer redisClient.Close()
			store := cache.WithBreaker(redisClient, resilience.CircuitBreakerConfig{})
			queryCache = cache.New(store, cfg.Redis.CacheTTL)
			checker.Register("redis", health.PingCheck(redisClient, false))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	aggregator := analytics.NewAggregator()
	var publisher analytics.Publisher
	if cfg.Kafka.Enabled && cfg.Kafka.Topics.SearchAnalytics != "" {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchAnalytics)
		defer producer.Close()
		publisher = producer
	}
	collector := analytics.NewCollector(publisher, aggregator, analytics.CollectorOptions{})
	collector.Start(ctx)
	defer collector.Close()

	svc := service.New(engine, queryCache, m, collector)
	checker.Register("engine", health.PingCheck(svc, true))

	if cfg.Postgres.Enabled {
		if err := bootstrapFromPostgres(ctx, cfg.Postgres, svc); err != nil {
			return err
		}
	}
	svc.MarkReady()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled {
		kc := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.Documents, consumer.HandleMessage(svc, service.SourceKafka))
		ic := consumer.New(kc)
		g.Go(func() error {
			return ic.Start(gctx)
		})
		slog.Info("consuming documents from kafka",
			"topic", cfg.Kafka.Topics.Documents,
			"group", cfg.Kafka.ConsumerGroup,
		)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(cfg, svc, aggregator, checker, m),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	g.Go(func() error {
		slog.Info("search service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutdown signal received")
		shutdownWithTimeout("http server", server.Shutdown, cfg.Server.ShutdownTimeout)
		return nil
	})

	return g.Wait()
}

func newRouter(cfg *config.Config, svc *service.Service, aggregator *analytics.Aggregator, checker *health.Checker, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	search := handler.New(svc, cfg.Engine.DefaultPageSize)
	ingest := ingesthandler.New(svc, service.SourceHTTP)
	stats := analytics.NewHandler(aggregator)

	r.Route("/api/v1", func(r chi.Router) {
		search.Register(r)
		r.Post("/documents", ingest.Ingest)
		r.Get("/analytics/stats", stats.Stats)
	})
	r.Get("/health/live", checker.LiveHandler())
	r.Get("/health/ready", checker.ReadyHandler())
	return r
}

func connectRedis(ctx context.Context, cfg config.RedisConfig) (*pkgredis.Client, error) {
	var client *pkgredis.Client
	err := resilience.Retry(ctx, "redis-connect", resilience.RetryConfig{MaxAttempts: 3}, func(ctx context.Context) error {
		var err error
		client, err = pkgredis.NewClient(ctx, cfg)
		return err
	})
	return client, err
}

// bootstrapFromPostgres loads the documents table before the service reports
// ready. An unreachable database is fatal: serving without the corpus would
// answer queries with silently missing documents.
func bootstrapFromPostgres(ctx context.Context, cfg config.PostgresConfig, svc *service.Service) error {
	var db *postgres.Client
	err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5, InitialDelay: 500 * time.Millisecond}, func(ctx context.Context) error {
		var err error
		db, err = postgres.New(ctx, cfg)
		return err
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	l := loader.New(db, svc, service.SourcePostgres)
	return resilience.WithTimeout(ctx, cfg.LoadTimeout, "postgres-bootstrap", func(ctx context.Context) error {
		_, err := l.Load(ctx)
		return err
	})
}

func shutdownWithTimeout(name string, shutdown func(context.Context) error, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Error("shutdown error", "component", name, "error", err)
	}
}
