/*
Package wallet implements the wallet ledger: per-user, per-asset balances
split into available and locked funds, and holds that reserve funds against
a business reference until they are released or captured.

Usage:

	svc := wallet.NewService(wallet.Dependencies{
	    Repo:     repositories.NewLedgerRepository(db, cfg.LockTimeout),
	    Assets:   assets.NewService(repositories.NewAssetRepository(db)),
	    Limits:   limits.NewEnforcer(limits.Config{Limit: limit}, logger),
	    Cache:    cacheService,
	    Notifier: notification.Multi(evictor, publisher),
	    Logger:   logger,
	}, wallet.WalletConfig{LockWaitTimeout: 5 * time.Second})

	bal, err := svc.Deposit(ctx, userID, assetID, amount)
	bal, hold, err := svc.LockFundsWithHold(ctx, userID, assetID, amount, "ORDER", orderID)
	hold, err = svc.CaptureHold(ctx, hold.ID)

Locking:

Every mutation takes an in-process key lock for the balance it touches
(bounded by LockWaitTimeout) and then runs one database transaction that
locks the balance row before any hold row. Cash deposits additionally take
the user's deposit-limit key first. A lock wait that times out fails with
ErrBusy. Once the transaction starts it is detached from the caller's
context and bounded by ProcessingTimeout instead.

Holds:

A hold moves ACTIVE -> RELEASED (funds go back to available) or
ACTIVE -> CAPTURED (funds leave the balance). Release and capture of a
terminal hold return the hold unchanged. LockFunds with a reference that
already has an ACTIVE hold returns the current balance unchanged, so retried
requests converge on one hold.

Notifications:

A mutation that changed state notifies the Notifier once, after commit.
Rolled back work and no-op calls never notify. Notifier errors are logged.

Errors:

All errors carry a code from internal/errors: INVALID_INPUT,
INSUFFICIENT_BALANCE, DEPOSIT_LIMIT_EXCEEDED, NOT_FOUND, BUSY and
STORE_FAILURE. Store failures are never retried here.
*/
package wallet
