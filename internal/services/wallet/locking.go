package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simex/internal/repositories"
	"simex/internal/utils/keylock"
)

// Key lock order: depositLimitKey before balanceKey. No operation holds two
// balance keys.

func balanceKey(userID, assetID uint) string {
	return fmt.Sprintf("balance:%d:%d", userID, assetID)
}

func depositLimitKey(userID uint) string {
	return fmt.Sprintf("deposit-limit:%d", userID)
}

// run takes keys in order, waiting at most LockWaitTimeout, then runs fn in
// one transaction. The caller's context only bounds the wait: the
// transaction gets a detached context limited by ProcessingTimeout.
func (s *service) run(ctx context.Context, op string, keys []string, fn func(ctx context.Context, tx repositories.LedgerTx) error) error {
	waitStart := time.Now()
	release, err := s.locks.AcquireAll(ctx, keys, s.config.LockWaitTimeout)
	s.metrics.RecordLockWait(op, time.Since(waitStart))
	if err != nil {
		if errors.Is(err, keylock.ErrTimeout) {
			return ErrBusy.Withf("waited %s for %v", s.config.LockWaitTimeout, keys)
		}
		return ErrBusy.Wrap(err)
	}
	defer release()

	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ProcessingTimeout)
	defer cancel()

	return s.repo.ExecuteInTransaction(txCtx, func(tx repositories.LedgerTx) error {
		return fn(txCtx, tx)
	})
}
