// Package main is the entry point for the ledger HTTP server.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simex/internal/config"
	"simex/internal/handlers"
	"simex/internal/middleware"
	"simex/internal/repositories"
	"simex/internal/repositories/cache"
	"simex/internal/routes"
	"simex/internal/services/assets"
	"simex/internal/services/limits"
	"simex/internal/services/notification"
	"simex/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// run performs the following setup:
// - Loads configuration
// - Opens PostgreSQL and Redis
// - Builds the ledger service and its notifier chain
// - Serves HTTP until SIGINT/SIGTERM
func run(logger *zap.Logger) error {
	if err := config.LoadEnv(); err != nil {
		logger.Info("no .env file loaded, using process environment")
	}
	ledgerCfg := config.LoadLedgerConfig()
	dbCfg := repositories.NewDBConfig()

	db, err := repositories.InitDB(dbCfg, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	logger.Info("connected to database", zap.String("host", dbCfg.Host), zap.String("name", dbCfg.Name))

	redisClient := cache.NewRedisClient(cache.NewRedisConfig())
	cacheService := cache.NewCacheService(redisClient, ledgerCfg.BalanceCacheTTL)
	defer cacheService.Close()
	if err := cacheService.HealthCheck(context.Background()); err != nil {
		// Reads fall back to the database until Redis comes back.
		logger.Warn("redis unavailable at startup", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(sqlDB, dbCfg.Name),
	)

	walletService := wallet.NewService(wallet.Dependencies{
		Repo:   repositories.NewLedgerRepository(db, dbCfg.LockTimeout),
		Assets: assets.NewService(repositories.NewAssetRepository(db)),
		Limits: limits.NewEnforcer(limits.Config{
			Limit:  ledgerCfg.DepositLimitUSD,
			Window: ledgerCfg.DepositWindow,
		}, logger),
		Cache: cacheService,
		Notifier: notification.Multi(
			notification.NewCacheEvictor(cacheService),
			notification.NewRedisPublisher(redisClient, ledgerCfg.NotifyChannel),
		),
		Metrics: wallet.NewPrometheusCollector(registry),
		Logger:  logger,
	}, wallet.WalletConfig{
		LockWaitTimeout:   ledgerCfg.LockWaitTimeout,
		ProcessingTimeout: ledgerCfg.ProcessingTimeout,
	})

	app := fiber.New(fiber.Config{
		AppName:      "simex-ledger",
		ReadTimeout:  config.GetDurationEnv("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: config.GetDurationEnv("HTTP_WRITE_TIMEOUT", 45*time.Second),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logger.Named("http"), middleware.NewHTTPMetrics(registry)))
	app.Use(cors.New(cors.Config{
		AllowOrigins: config.GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET,POST,HEAD",
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Wallet:  handlers.NewWalletHandler(walletService),
		Health:  handlers.NewHealthHandler(db, cacheService),
		Metrics: adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	}, routes.RateLimit{
		Max:        config.GetIntEnv("RATE_LIMIT_MAX", 120),
		Expiration: config.GetDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// Cross-instance cache eviction. Redis outages end the loop but not the
	// server; TTL expiry bounds staleness meanwhile.
	g.Go(func() error {
		subscriber := notification.NewSubscriber(redisClient, ledgerCfg.NotifyChannel, cacheService, logger)
		if err := subscriber.Run(ctx); err != nil {
			logger.Error("balance change subscriber stopped", zap.Error(err))
		}
		return nil
	})

	g.Go(func() error {
		logPoolStats(ctx, logger, sqlDB)
		return nil
	})

	g.Go(func() error {
		addr := ":" + config.GetEnv("PORT", "3000")
		logger.Info("listening", zap.String("addr", addr))
		return app.Listen(addr)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// logPoolStats reports connection pool usage once a minute.
func logPoolStats(ctx context.Context, logger *zap.Logger, sqlDB *sql.DB) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := sqlDB.Stats()
			logger.Debug("db pool stats",
				zap.Int("open", stats.OpenConnections),
				zap.Int("idle", stats.Idle),
				zap.Int("in_use", stats.InUse),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration),
			)
		}
	}
}
