// Package limits enforces the rolling-window cap on cash deposits.
package limits

import (
	"context"
	"fmt"
	"time"

	domainerrors "simex/internal/errors"
	"simex/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultWindow = 24 * time.Hour

// DepositStore is the slice of a ledger transaction the enforcer needs.
// repositories.LedgerTx satisfies it.
type DepositStore interface {
	LockUserDeposits(userID uint) error
	SumDepositsSince(userID uint, since time.Time) (decimal.Decimal, error)
	CreateCashDeposit(deposit *models.CashDeposit) error
}

type Config struct {
	// Limit is the USD cap per Window. Zero or negative disables the check;
	// deposits are still recorded.
	Limit  decimal.Decimal
	Window time.Duration
}

type Enforcer struct {
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

func NewEnforcer(cfg Config, logger *zap.Logger) *Enforcer {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enforcer{cfg: cfg, now: time.Now, logger: logger}
}

// WithClock replaces the wall clock, for tests.
func (e *Enforcer) WithClock(now func() time.Time) *Enforcer {
	e.now = now
	return e
}

func (e *Enforcer) Enabled() bool {
	return e.cfg.Limit.IsPositive()
}

func (e *Enforcer) Config() Config {
	return e.cfg
}

// CheckAndReserve rejects the deposit when the user's cash deposits inside
// the window plus amountUSD would exceed the limit, and otherwise appends the
// deposit record. It must run on the same transaction as the balance update.
func (e *Enforcer) CheckAndReserve(ctx context.Context, store DepositStore, userID, assetID uint, amountUSD decimal.Decimal) (*models.CashDeposit, error) {
	if !amountUSD.IsPositive() {
		return nil, domainerrors.ErrInvalidAmount
	}
	if err := store.LockUserDeposits(userID); err != nil {
		return nil, err
	}

	now := e.now().UTC()
	if e.Enabled() {
		used, err := store.SumDepositsSince(userID, now.Add(-e.cfg.Window))
		if err != nil {
			return nil, err
		}
		if used.Add(amountUSD).GreaterThan(e.cfg.Limit) {
			e.logger.Info("deposit limit exceeded",
				zap.Uint("user_id", userID),
				zap.String("used", used.String()),
				zap.String("amount", amountUSD.String()),
				zap.String("limit", e.cfg.Limit.String()))
			return nil, domainerrors.ErrDepositLimitExceeded.Withf(
				"%s already deposited in the last %s, limit %s", used, e.cfg.Window, e.cfg.Limit)
		}
	}

	deposit := &models.CashDeposit{
		UserID:    userID,
		AssetID:   assetID,
		AmountUSD: models.NewAmount(amountUSD),
		CreatedAt: now,
	}
	if err := store.CreateCashDeposit(deposit); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}
	return deposit, nil
}
