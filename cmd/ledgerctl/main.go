// Command ledgerctl operates the wallet ledger from a terminal. It builds the
// same service the HTTP server uses, against Postgres by default or a local
// SQLite file with --sqlite.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"simex/internal/config"
	"simex/internal/repositories"
	"simex/internal/repositories/cache"
	"simex/internal/services/assets"
	"simex/internal/services/limits"
	"simex/internal/services/notification"
	"simex/internal/services/wallet"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// rootConfig carries the persistent flags.
type rootConfig struct {
	sqlite  string
	redis   bool
	verbose bool
}

// ledger is everything a subcommand may need.
type ledger struct {
	repo   repositories.LedgerRepository
	assets *assets.Service
	wallet wallet.Service
	close  func()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rc := &rootConfig{}

	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operate the simex wallet ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = config.LoadEnv()
		},
	}

	cmd.PersistentFlags().StringVar(&rc.sqlite, "sqlite", "", "use a local SQLite database file instead of Postgres")
	cmd.PersistentFlags().BoolVar(&rc.redis, "redis", false, "evict cached balances and publish change events through Redis")
	cmd.PersistentFlags().BoolVarP(&rc.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newMigrateCmd(rc),
		newAssetsCmd(rc),
		newDepositCmd(rc),
		newDepositCurrencyCmd(rc),
		newLockCmd(rc),
		newReleaseCmd(rc),
		newCaptureCmd(rc),
		newBalancesCmd(rc),
		newHoldsCmd(rc),
		newAuditCmd(rc),
	)
	return cmd
}

func (rc *rootConfig) logger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !rc.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (rc *rootConfig) openDB(logger *zap.Logger) (*gorm.DB, repositories.DBConfig, error) {
	dbCfg := repositories.NewDBConfig()
	if rc.sqlite != "" {
		db, err := repositories.OpenSQLite(rc.sqlite, logger)
		return db, dbCfg, err
	}
	db, err := repositories.InitDB(dbCfg, logger)
	return db, dbCfg, err
}

// open builds the ledger service. Callers must invoke close.
func (rc *rootConfig) open() (*ledger, error) {
	logger := rc.logger()
	db, dbCfg, err := rc.openDB(logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	ledgerCfg := config.LoadLedgerConfig()

	repo := repositories.NewLedgerRepository(db, dbCfg.LockTimeout)
	catalog := assets.NewService(repositories.NewAssetRepository(db))
	deps := wallet.Dependencies{
		Repo:   repo,
		Assets: catalog,
		Limits: limits.NewEnforcer(limits.Config{
			Limit:  ledgerCfg.DepositLimitUSD,
			Window: ledgerCfg.DepositWindow,
		}, logger),
		Logger: logger,
	}

	closers := []func(){}
	if rc.redis {
		client := cache.NewRedisClient(cache.NewRedisConfig())
		cacheService := cache.NewCacheService(client, ledgerCfg.BalanceCacheTTL)
		deps.Cache = cacheService
		deps.Notifier = notification.Multi(
			notification.NewCacheEvictor(cacheService),
			notification.NewRedisPublisher(client, ledgerCfg.NotifyChannel),
		)
		closers = append(closers, func() { _ = cacheService.Close() })
	}

	closers = append(closers, func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = logger.Sync()
	})

	return &ledger{
		repo:   repo,
		assets: catalog,
		wallet: wallet.NewService(deps, wallet.WalletConfig{
			LockWaitTimeout:   ledgerCfg.LockWaitTimeout,
			ProcessingTimeout: ledgerCfg.ProcessingTimeout,
		}),
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

// withLedger opens the ledger around fn.
func (rc *rootConfig) withLedger(cmd *cobra.Command, fn func(ctx context.Context, l *ledger) error) error {
	l, err := rc.open()
	if err != nil {
		return err
	}
	defer l.close()
	return fn(cmd.Context(), l)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newMigrateCmd(rc *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the ledger tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Opening the database already migrates.
			return rc.withLedger(cmd, func(ctx context.Context, l *ledger) error {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}
