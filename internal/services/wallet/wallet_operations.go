package wallet

import (
	"context"
	"time"

	"simex/internal/models"
	"simex/internal/repositories"
	"simex/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Deposit credits amount to the user's available balance, creating the
// balance on first use. Deposits are not idempotent.
func (s *service) Deposit(ctx context.Context, userID, assetID uint, amount decimal.Decimal) (balance *models.Balance, err error) {
	defer s.observe(opDeposit, time.Now(), &err)

	if err := s.validateDeposit(userID, amount); err != nil {
		return nil, s.fail(opDeposit, err)
	}
	if _, err := s.assets.Get(ctx, assetID); err != nil {
		return nil, s.fail(opDeposit, err)
	}

	err = s.run(ctx, opDeposit, []string{balanceKey(userID, assetID)}, func(ctx context.Context, tx repositories.LedgerTx) error {
		b, err := credit(tx, userID, assetID, amount)
		if err != nil {
			return err
		}
		balance = b
		s.notifyAfterCommit(tx, userID)
		return nil
	})
	if err != nil {
		return nil, s.fail(opDeposit, err)
	}

	s.metrics.RecordVolume(opDeposit, amount.InexactFloat64())
	s.logger.Info("deposit applied",
		zap.Uint("user_id", userID),
		zap.Uint("asset_id", assetID),
		zap.String("amount", amount.String()))
	return balance, nil
}

// DepositByCurrency resolves symbol through the asset catalog and deposits.
// Deposits of cash assets are checked against the rolling deposit limit in
// the same transaction that credits the balance.
func (s *service) DepositByCurrency(ctx context.Context, userID uint, symbol string, amount decimal.Decimal) (balance *models.Balance, err error) {
	defer s.observe(opDepositByCurrency, time.Now(), &err)

	if err := s.validateDeposit(userID, amount); err != nil {
		return nil, s.fail(opDepositByCurrency, err)
	}
	asset, err := s.assets.Resolve(ctx, symbol)
	if err != nil {
		return nil, s.fail(opDepositByCurrency, err)
	}

	keys := []string{balanceKey(userID, asset.ID)}
	if asset.IsCash {
		keys = []string{depositLimitKey(userID), balanceKey(userID, asset.ID)}
	}

	err = s.run(ctx, opDepositByCurrency, keys, func(ctx context.Context, tx repositories.LedgerTx) error {
		if asset.IsCash {
			// Cash equivalents count 1:1 in USD.
			if _, err := s.limits.CheckAndReserve(ctx, tx, userID, asset.ID, amount); err != nil {
				return err
			}
		}
		b, err := credit(tx, userID, asset.ID, amount)
		if err != nil {
			return err
		}
		balance = b
		s.notifyAfterCommit(tx, userID)
		return nil
	})
	if err != nil {
		return nil, s.fail(opDepositByCurrency, err)
	}

	s.metrics.RecordVolume(opDepositByCurrency, amount.InexactFloat64())
	s.logger.Info("currency deposit applied",
		zap.Uint("user_id", userID),
		zap.String("symbol", asset.Symbol),
		zap.Bool("cash", asset.IsCash),
		zap.String("amount", amount.String()))
	return balance, nil
}

func (s *service) validateDeposit(userID uint, amount decimal.Decimal) error {
	if err := validation.ValidateUserID(userID); err != nil {
		return err
	}
	return validation.ValidateAmount(amount)
}

func credit(tx repositories.LedgerTx, userID, assetID uint, amount decimal.Decimal) (*models.Balance, error) {
	b, err := tx.GetOrCreateBalanceForUpdate(userID, assetID)
	if err != nil {
		return nil, err
	}
	b.Available.Decimal = b.Available.Add(amount)
	if err := validation.ValidateBalance(b.Total()); err != nil {
		return nil, err
	}
	if err := tx.SaveBalance(b); err != nil {
		return nil, err
	}
	return b, nil
}
