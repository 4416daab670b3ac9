package wallet

import (
	"time"

	"simex/internal/models"
	"simex/internal/repositories"
	"simex/internal/services/limits"
	"simex/internal/services/notification"
	"simex/internal/utils/keylock"

	"go.uber.org/zap"
)

// WalletConfig holds configuration for wallet operations
type WalletConfig struct {
	// LockWaitTimeout bounds the wait for a balance key lock.
	LockWaitTimeout time.Duration
	// ProcessingTimeout bounds a transaction once it has started.
	ProcessingTimeout time.Duration
}

// HoldQuery filters and pages ListHolds. An empty Status matches all.
type HoldQuery struct {
	Status models.HoldStatus
	Limit  int
	Offset int
}

// Dependencies are the collaborators of the service. Repo and Assets are
// required; the rest default to no-op or fresh instances.
type Dependencies struct {
	Repo     repositories.LedgerRepository
	Assets   AssetCatalog
	Limits   *limits.Enforcer
	Cache    BalanceCache
	Notifier notification.Notifier
	Locks    *keylock.Locker
	Metrics  MetricsCollector
	Logger   *zap.Logger
}

// MetricsCollector defines the interface for collecting wallet metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)
	RecordLockWait(operation string, duration time.Duration)

	// Cache metrics
	RecordCacheHit(key string)
	RecordCacheMiss(key string)

	// Error metrics
	RecordError(operation, code string)

	// Volume metrics
	RecordVolume(operation string, amount float64)
}
