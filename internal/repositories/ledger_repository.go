package repositories

import (
	"context"
	"time"

	"simex/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerRepository defines the ledger's database operations. Reads outside a
// transaction never lock; every balance or hold mutation goes through
// ExecuteInTransaction.
type LedgerRepository interface {
	// Read operations
	ListBalances(ctx context.Context, userID uint) ([]models.Balance, error)
	GetBalance(ctx context.Context, userID, assetID uint) (*models.Balance, error)
	GetHold(ctx context.Context, id uuid.UUID) (*models.Hold, error)
	FindActiveHold(ctx context.Context, userID, assetID uint, refType, refID string) (*models.Hold, error)
	ListHolds(ctx context.Context, filter HoldFilter) ([]models.Hold, error)

	// ExecuteInTransaction runs fn in one database transaction. fn returning
	// an error rolls everything back. Hooks registered with
	// LedgerTx.AfterCommit run only after a successful commit.
	ExecuteInTransaction(ctx context.Context, fn func(LedgerTx) error) error

	// Audit
	FindLockedDrift(ctx context.Context) ([]LockedDrift, error)
}

// LedgerTx is the transaction-scoped view handed to ExecuteInTransaction.
// ForUpdate reads take a row lock where the dialect supports it.
type LedgerTx interface {
	GetBalanceForUpdate(userID, assetID uint) (*models.Balance, error)
	GetOrCreateBalanceForUpdate(userID, assetID uint) (*models.Balance, error)
	SaveBalance(balance *models.Balance) error

	FindActiveHold(userID, assetID uint, refType, refID string) (*models.Hold, error)
	GetHoldForUpdate(id uuid.UUID) (*models.Hold, error)
	CreateHold(hold *models.Hold) error
	TransitionHold(hold *models.Hold, to models.HoldStatus) error

	// LockUserDeposits serializes deposit-limit checks of one user across
	// processes for the rest of the transaction.
	LockUserDeposits(userID uint) error
	SumDepositsSince(userID uint, since time.Time) (decimal.Decimal, error)
	CreateCashDeposit(deposit *models.CashDeposit) error

	AfterCommit(fn func(ctx context.Context))
}

// HoldFilter narrows ListHolds. Zero values mean "any".
type HoldFilter struct {
	UserID  uint
	AssetID uint
	Status  models.HoldStatus
	Limit   int
	Offset  int
}

// LockedDrift reports a balance whose Locked side disagrees with the sum of
// its ACTIVE holds.
type LockedDrift struct {
	UserID      uint            `json:"user_id"`
	AssetID     uint            `json:"asset_id"`
	Locked      decimal.Decimal `json:"locked"`
	ActiveHolds decimal.Decimal `json:"active_holds"`
}
