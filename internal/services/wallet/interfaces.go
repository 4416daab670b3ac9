package wallet

import (
	"context"

	"simex/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the wallet ledger operations
type Service interface {
	// Deposits
	Deposit(ctx context.Context, userID, assetID uint, amount decimal.Decimal) (*models.Balance, error)
	DepositByCurrency(ctx context.Context, userID uint, symbol string, amount decimal.Decimal) (*models.Balance, error)

	// Holds
	LockFunds(ctx context.Context, userID, assetID uint, amount decimal.Decimal, refType, refID string) (*models.Balance, error)
	LockFundsWithHold(ctx context.Context, userID, assetID uint, amount decimal.Decimal, refType, refID string) (*models.Balance, *models.Hold, error)
	ReleaseHold(ctx context.Context, holdID uuid.UUID) (*models.Hold, error)
	CaptureHold(ctx context.Context, holdID uuid.UUID) (*models.Hold, error)

	// Queries
	GetBalances(ctx context.Context, userID uint) ([]models.Balance, error)
	GetHold(ctx context.Context, holdID uuid.UUID) (*models.Hold, error)
	ListHolds(ctx context.Context, userID uint, query HoldQuery) ([]models.Hold, error)
}

// AssetCatalog resolves assets. Unknown assets are ErrAssetNotFound.
type AssetCatalog interface {
	Resolve(ctx context.Context, symbol string) (*models.Asset, error)
	Get(ctx context.Context, id uint) (*models.Asset, error)
}

// BalanceCache is the read-through cache behind GetBalances.
type BalanceCache interface {
	GetBalances(ctx context.Context, userID uint) ([]models.Balance, bool, error)
	BalancesGeneration(ctx context.Context, userID uint) (int64, error)
	SetBalancesIfGeneration(ctx context.Context, userID uint, gen int64, balances []models.Balance) (bool, error)
}
