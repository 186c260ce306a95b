package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deltaoption/internal/adapters/clickhouse"
	"deltaoption/internal/adapters/config"
	"deltaoption/internal/adapters/errors/noop"
	"deltaoption/internal/adapters/errors/sentry"
	"deltaoption/internal/adapters/kafka"
	"deltaoption/internal/adapters/oracle"
	"deltaoption/internal/adapters/postgres"
	"deltaoption/internal/adapters/redis"
	"deltaoption/internal/api"
	"deltaoption/internal/api/health"
	"deltaoption/internal/events"
	chrepo "deltaoption/internal/repository/clickhouse"
	pgrepo "deltaoption/internal/repository/postgres"
	redisrepo "deltaoption/internal/repository/redis"
	optionsvc "deltaoption/internal/services/option"
	pricefeedsvc "deltaoption/internal/services/pricefeed"
	"deltaoption/internal/workers"
	"deltaoption/pkg/errors"
	"deltaoption/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)

	// Backing stores
	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	chClient, err := clickhouse.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer chClient.Close()

	producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	defer producer.Close()

	// Repositories
	optionRepo := pgrepo.NewOptionRepository(pgClient.DB())
	escrowRepo := pgrepo.NewEscrowRepository(pgClient.DB())
	txManager := pgrepo.NewTxManager(pgClient.DB())
	priceCache := redisrepo.NewPriceCache(redisClient.Client())
	priceHistory := chrepo.NewPriceHistoryRepository(chClient.Conn())

	// Oracle and services
	band := oracle.NewBandClient(oracle.BandConfig{
		Endpoint:          cfg.Oracle.Endpoint,
		QuoteSymbol:       cfg.Oracle.QuoteSymbol,
		RequestsPerMinute: cfg.Oracle.RequestsPerMinute,
	}, &http.Client{Timeout: cfg.Oracle.RequestTimeout})

	publisher := events.NewKafkaPublisher(producer)
	hub := api.NewPriceHub(log)

	prices := pricefeedsvc.NewService(band, priceCache, priceHistory, publisher, hub, cfg.Oracle.CacheTTL, log)
	options := optionsvc.NewService(optionRepo, escrowRepo, txManager, prices, publisher, log)

	// HTTP server
	healthHandler := health.New(log, cfg.App.Name, cfg.App.Version, map[string]health.Dependency{
		"postgres":   pgClient,
		"redis":      redisClient,
		"clickhouse": chClient,
	})

	server := api.NewServer(
		api.ServerConfig{
			Port:        cfg.API.Port,
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
		},
		api.NewOptionHandler(options, log),
		api.NewPriceHandler(prices, log),
		hub,
		healthHandler,
		log,
	)

	// Background workers
	scheduler := workers.NewScheduler()
	scheduler.RegisterWorker(workers.NewPriceCollectorWorker(
		prices,
		cfg.Oracle.Symbols,
		cfg.Workers.PriceCollectorInterval,
		cfg.Workers.PriceCollectorEnabled,
	))
	scheduler.RegisterWorker(workers.NewExpiryMonitorWorker(
		optionRepo,
		escrowRepo,
		cfg.Workers.ExpiryMonitorInterval,
		cfg.Workers.ExpiryMonitorEnabled,
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info("System initialized successfully")

	waitForShutdown(cancel, server, scheduler, serverErr, errorTracker, log)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// waitForShutdown blocks until a signal or server failure, then stops
// the workers and the HTTP server in order
func waitForShutdown(
	cancel context.CancelFunc,
	server *api.Server,
	scheduler *workers.Scheduler,
	serverErr chan error,
	errorTracker errors.Tracker,
	log *logger.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infof("Received signal %s, shutting down...", sig)
	case err := <-serverErr:
		if err != nil {
			log.Errorf("HTTP server failed: %v", err)
		}
	}

	cancel()

	if err := scheduler.Stop(); err != nil {
		log.Warnf("Worker shutdown: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Server shutdown: %v", err)
	}

	if errorTracker != nil {
		if err := errorTracker.Flush(shutdownCtx); err != nil {
			log.Warnf("Failed to flush error tracker: %v", err)
		}
	}

	log.Info("Shutdown complete")
}
