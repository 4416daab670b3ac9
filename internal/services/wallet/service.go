package wallet

import (
	"context"
	"errors"
	"strings"
	"time"

	domainerrors "simex/internal/errors"
	"simex/internal/models"
	"simex/internal/repositories"
	"simex/internal/services/limits"
	"simex/internal/services/notification"
	"simex/internal/utils/keylock"
	"simex/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type service struct {
	repo     repositories.LedgerRepository
	assets   AssetCatalog
	limits   *limits.Enforcer
	cache    BalanceCache
	notifier notification.Notifier
	locks    *keylock.Locker
	config   WalletConfig
	metrics  MetricsCollector
	logger   *zap.Logger

	balanceLoads singleflight.Group
}

// NewService creates a new wallet service
func NewService(deps Dependencies, config WalletConfig) Service {
	if deps.Repo == nil {
		panic("repo is required")
	}
	if deps.Assets == nil {
		panic("asset catalog is required")
	}

	if config.LockWaitTimeout <= 0 {
		config.LockWaitTimeout = DefaultLockWaitTimeout
	}
	if config.ProcessingTimeout <= 0 {
		config.ProcessingTimeout = DefaultTimeout
	}

	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Limits == nil {
		deps.Limits = limits.NewEnforcer(limits.Config{}, deps.Logger)
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.Noop{}
	}
	if deps.Locks == nil {
		deps.Locks = keylock.New()
	}
	// Metrics is optional, create no-op collector if nil
	if deps.Metrics == nil {
		deps.Metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:     deps.Repo,
		assets:   deps.Assets,
		limits:   deps.Limits,
		cache:    deps.Cache,
		notifier: deps.Notifier,
		locks:    deps.Locks,
		config:   config,
		metrics:  deps.Metrics,
		logger:   deps.Logger.Named("wallet"),
	}
}

func (s *service) GetHold(ctx context.Context, holdID uuid.UUID) (hold *models.Hold, err error) {
	defer s.observe(opGetHold, time.Now(), &err)

	if holdID == uuid.Nil {
		return nil, s.fail(opGetHold, ErrInvalidInput.Withf("hold id is required"))
	}
	hold, err = s.repo.GetHold(ctx, holdID)
	if err != nil {
		return nil, s.fail(opGetHold, err)
	}
	return hold, nil
}

func (s *service) ListHolds(ctx context.Context, userID uint, query HoldQuery) (holds []models.Hold, err error) {
	defer s.observe(opListHolds, time.Now(), &err)

	if err := validation.ValidateUserID(userID); err != nil {
		return nil, s.fail(opListHolds, err)
	}
	status := models.HoldStatus(strings.ToUpper(string(query.Status)))
	if status != "" && !status.Valid() {
		return nil, s.fail(opListHolds, ErrInvalidInput.Withf("unknown hold status %q", status))
	}

	if query.Limit < 0 || query.Offset < 0 {
		return nil, s.fail(opListHolds, ErrInvalidInput.Withf("negative limit or offset"))
	}

	holds, err = s.repo.ListHolds(ctx, repositories.HoldFilter{
		UserID: userID,
		Status: status,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		return nil, s.fail(opListHolds, err)
	}
	if holds == nil {
		holds = []models.Hold{}
	}
	return holds, nil
}

// notifyAfterCommit registers the balance-changed notification on tx.
func (s *service) notifyAfterCommit(tx repositories.LedgerTx, userID uint) {
	tx.AfterCommit(func(ctx context.Context) {
		if err := s.notifier.BalanceChanged(ctx, userID); err != nil {
			s.logger.Warn("balance change notification failed",
				zap.Uint("user_id", userID), zap.Error(err))
		}
	})
}

// fail maps err onto a domain error and records it.
func (s *service) fail(op string, err error) error {
	switch {
	case domainerrors.IsDomain(err):
	case errors.Is(err, repositories.ErrLockTimeout):
		err = ErrBusy.Wrap(err)
	case errors.Is(err, repositories.ErrHoldNotFound):
		err = ErrHoldNotFound.Wrap(err)
	case errors.Is(err, repositories.ErrAssetNotFound):
		err = ErrAssetNotFound.Wrap(err)
	case errors.Is(err, models.ErrNegativeBalance):
		err = ErrInsufficientBalance.Wrap(err)
	default:
		err = ErrStoreFailure.Wrap(err)
	}

	code := domainerrors.CodeOf(err)
	s.metrics.RecordError(op, code)
	if code == domainerrors.CodeStoreFailure {
		s.logger.Error("ledger operation failed", zap.String("op", op), zap.Error(err))
	} else {
		s.logger.Debug("ledger operation rejected", zap.String("op", op), zap.String("code", code), zap.Error(err))
	}
	return err
}

func (s *service) observe(op string, start time.Time, errp *error) {
	s.metrics.RecordOperationDuration(op, time.Since(start))
	result := "success"
	if *errp != nil {
		result = strings.ToLower(domainerrors.CodeOf(*errp))
	}
	s.metrics.RecordOperationResult(op, result)
}
