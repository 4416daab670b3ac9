package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simex/internal/models"
	"simex/internal/repositories"
	"simex/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LockFunds moves amount from available to locked under a new ACTIVE hold
// for (refType, refID). A reference that already has an ACTIVE hold is left
// alone and the current balance is returned.
func (s *service) LockFunds(ctx context.Context, userID, assetID uint, amount decimal.Decimal, refType, refID string) (*models.Balance, error) {
	balance, _, err := s.LockFundsWithHold(ctx, userID, assetID, amount, refType, refID)
	return balance, err
}

// LockFundsWithHold is LockFunds that also returns the ACTIVE hold, new or
// existing.
func (s *service) LockFundsWithHold(ctx context.Context, userID, assetID uint, amount decimal.Decimal, refType, refID string) (balance *models.Balance, hold *models.Hold, err error) {
	defer s.observe(opLockFunds, time.Now(), &err)

	if err := validation.ValidateUserID(userID); err != nil {
		return nil, nil, s.fail(opLockFunds, err)
	}
	if assetID == 0 {
		return nil, nil, s.fail(opLockFunds, ErrInvalidInput.Withf("asset id is required"))
	}
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, nil, s.fail(opLockFunds, err)
	}
	refType, refID, err = validation.NormalizeReference(refType, refID)
	if err != nil {
		return nil, nil, s.fail(opLockFunds, err)
	}

	created := false
	err = s.run(ctx, opLockFunds, []string{balanceKey(userID, assetID)}, func(ctx context.Context, tx repositories.LedgerTx) error {
		b, err := tx.GetBalanceForUpdate(userID, assetID)
		if errors.Is(err, repositories.ErrBalanceNotFound) {
			return ErrInsufficientBalance.Withf("no balance for asset %d", assetID)
		}
		if err != nil {
			return err
		}

		existing, err := tx.FindActiveHold(userID, assetID, refType, refID)
		switch {
		case err == nil:
			s.warnAmountMismatch(existing, amount)
			balance, hold = b, existing
			return nil
		case !errors.Is(err, repositories.ErrHoldNotFound):
			return err
		}

		if b.Available.LessThan(amount) {
			return ErrInsufficientBalance.Withf("available %s, requested %s", b.Available, amount)
		}
		b.Available.Decimal = b.Available.Sub(amount)
		b.Locked.Decimal = b.Locked.Add(amount)
		if err := tx.SaveBalance(b); err != nil {
			return err
		}

		h := &models.Hold{
			UserID:  userID,
			AssetID: assetID,
			Amount:  models.NewAmount(amount),
			Status:  models.HoldStatusActive,
			RefType: refType,
			RefID:   refID,
		}
		if err := tx.CreateHold(h); err != nil {
			return err
		}

		balance, hold, created = b, h, true
		s.notifyAfterCommit(tx, userID)
		return nil
	})

	if errors.Is(err, repositories.ErrDuplicateActiveHold) {
		// Another process won the race on the same reference. Our
		// transaction rolled back; converge on the winner's hold.
		balance, hold, err = s.existingLock(ctx, userID, assetID, refType, refID)
	}
	if err != nil {
		return nil, nil, s.fail(opLockFunds, err)
	}

	if created {
		s.metrics.RecordVolume(opLockFunds, amount.InexactFloat64())
		s.logger.Info("funds locked",
			zap.Uint("user_id", userID),
			zap.Uint("asset_id", assetID),
			zap.String("amount", amount.String()),
			zap.String("hold_id", hold.ID.String()),
			zap.String("ref", refType+":"+refID))
	}
	return balance, hold, nil
}

func (s *service) existingLock(ctx context.Context, userID, assetID uint, refType, refID string) (*models.Balance, *models.Hold, error) {
	hold, err := s.repo.FindActiveHold(ctx, userID, assetID, refType, refID)
	if err != nil {
		return nil, nil, err
	}
	balance, err := s.repo.GetBalance(ctx, userID, assetID)
	if err != nil {
		return nil, nil, err
	}
	return balance, hold, nil
}

func (s *service) warnAmountMismatch(existing *models.Hold, requested decimal.Decimal) {
	if existing.Amount.Equal(requested) {
		return
	}
	s.logger.Warn("lock retried with a different amount, keeping existing hold",
		zap.String("hold_id", existing.ID.String()),
		zap.String("held", existing.Amount.String()),
		zap.String("requested", requested.String()))
}

// ReleaseHold returns an ACTIVE hold's funds to available. Terminal holds
// are returned unchanged.
func (s *service) ReleaseHold(ctx context.Context, holdID uuid.UUID) (hold *models.Hold, err error) {
	defer s.observe(opReleaseHold, time.Now(), &err)
	return s.settleHold(ctx, opReleaseHold, holdID, models.HoldStatusReleased)
}

// CaptureHold consumes an ACTIVE hold: its amount leaves locked and is not
// returned. Terminal holds are returned unchanged.
func (s *service) CaptureHold(ctx context.Context, holdID uuid.UUID) (hold *models.Hold, err error) {
	defer s.observe(opCaptureHold, time.Now(), &err)
	return s.settleHold(ctx, opCaptureHold, holdID, models.HoldStatusCaptured)
}

func (s *service) settleHold(ctx context.Context, op string, holdID uuid.UUID, to models.HoldStatus) (*models.Hold, error) {
	if holdID == uuid.Nil {
		return nil, s.fail(op, ErrInvalidInput.Withf("hold id is required"))
	}

	// Unlocked read, only to learn which balance key to take.
	peek, err := s.repo.GetHold(ctx, holdID)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if peek.Status.IsTerminal() {
		return peek, nil
	}

	var result *models.Hold
	changed := false
	err = s.run(ctx, op, []string{balanceKey(peek.UserID, peek.AssetID)}, func(ctx context.Context, tx repositories.LedgerTx) error {
		b, err := tx.GetBalanceForUpdate(peek.UserID, peek.AssetID)
		if err != nil {
			return err
		}
		h, err := tx.GetHoldForUpdate(holdID)
		if err != nil {
			return err
		}
		if h.Status.IsTerminal() {
			result = h
			return nil
		}

		if b.Locked.LessThan(h.Amount.Decimal) {
			return fmt.Errorf("hold %s: locked %s, hold %s: %w", h.ID, b.Locked, h.Amount, errLockedDrift)
		}
		b.Locked.Decimal = b.Locked.Sub(h.Amount.Decimal)
		if to == models.HoldStatusReleased {
			b.Available.Decimal = b.Available.Add(h.Amount.Decimal)
		}
		if err := tx.SaveBalance(b); err != nil {
			return err
		}
		if err := tx.TransitionHold(h, to); err != nil {
			return err
		}

		result, changed = h, true
		s.notifyAfterCommit(tx, h.UserID)
		return nil
	})
	if err != nil {
		return nil, s.fail(op, err)
	}

	if changed {
		s.metrics.RecordVolume(op, result.Amount.InexactFloat64())
		s.logger.Info("hold settled",
			zap.String("hold_id", result.ID.String()),
			zap.String("status", string(result.Status)),
			zap.Uint("user_id", result.UserID),
			zap.String("amount", result.Amount.String()))
	}
	return result, nil
}
