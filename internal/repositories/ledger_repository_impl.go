package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"simex/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerRepository struct {
	db          *gorm.DB
	postgres    bool
	lockTimeout time.Duration
}

// NewLedgerRepository wraps db. lockTimeout bounds row-lock waits on
// Postgres; it is ignored on SQLite.
func NewLedgerRepository(db *gorm.DB, lockTimeout time.Duration) LedgerRepository {
	return &ledgerRepository{
		db:          db,
		postgres:    isPostgres(db),
		lockTimeout: lockTimeout,
	}
}

func (r *ledgerRepository) ListBalances(ctx context.Context, userID uint) ([]models.Balance, error) {
	var balances []models.Balance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("asset_id").
		Find(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	return balances, nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, userID, assetID uint) (*models.Balance, error) {
	var balance models.Balance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND asset_id = ?", userID, assetID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBalanceNotFound
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &balance, nil
}

func (r *ledgerRepository) GetHold(ctx context.Context, id uuid.UUID) (*models.Hold, error) {
	return getHold(r.db.WithContext(ctx), id)
}

func (r *ledgerRepository) FindActiveHold(ctx context.Context, userID, assetID uint, refType, refID string) (*models.Hold, error) {
	return findActiveHold(r.db.WithContext(ctx), userID, assetID, refType, refID)
}

func (r *ledgerRepository) ListHolds(ctx context.Context, filter HoldFilter) ([]models.Hold, error) {
	q := r.db.WithContext(ctx).Model(&models.Hold{})
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.AssetID != 0 {
		q = q.Where("asset_id = ?", filter.AssetID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var holds []models.Hold
	if err := q.Order("created_at DESC").Find(&holds).Error; err != nil {
		return nil, fmt.Errorf("failed to list holds: %w", err)
	}
	return holds, nil
}

func (r *ledgerRepository) ExecuteInTransaction(ctx context.Context, fn func(LedgerTx) error) error {
	var hooks []func(context.Context)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if r.postgres && r.lockTimeout > 0 {
			// SET does not take bind parameters.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}

		txRepo := &ledgerTx{db: tx, postgres: r.postgres}
		if err := fn(txRepo); err != nil {
			return err
		}
		hooks = txRepo.afterCommit
		return nil
	})
	if err != nil {
		return translateError(err)
	}

	for _, hook := range hooks {
		hook(ctx)
	}
	return nil
}

func (r *ledgerRepository) FindLockedDrift(ctx context.Context) ([]LockedDrift, error) {
	sums, err := r.sumActiveHolds(ctx)
	if err != nil {
		return nil, err
	}

	type key struct{ user, asset uint }
	active := make(map[key]decimal.Decimal, len(sums))
	for _, s := range sums {
		active[key{s.UserID, s.AssetID}] = s.Total
	}

	var balances []models.Balance
	if err := r.db.WithContext(ctx).Order("user_id, asset_id").Find(&balances).Error; err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}

	var drift []LockedDrift
	for _, b := range balances {
		k := key{b.UserID, b.AssetID}
		held := active[k]
		delete(active, k)
		if !b.Locked.Equal(held) {
			drift = append(drift, LockedDrift{UserID: b.UserID, AssetID: b.AssetID, Locked: b.Locked.Decimal, ActiveHolds: held})
		}
	}
	// Active holds with no balance row at all.
	for k, held := range active {
		drift = append(drift, LockedDrift{UserID: k.user, AssetID: k.asset, Locked: decimal.Zero, ActiveHolds: held})
	}
	return drift, nil
}

type holdSum struct {
	UserID  uint
	AssetID uint
	Total   decimal.Decimal
}

// sumActiveHolds totals ACTIVE holds per (user, asset). SQLite keeps amounts
// as text and its SUM would go through floats, so the rows are added up here.
func (r *ledgerRepository) sumActiveHolds(ctx context.Context) ([]holdSum, error) {
	q := r.db.WithContext(ctx).Model(&models.Hold{}).Where("status = ?", models.HoldStatusActive)

	if r.postgres {
		var sums []holdSum
		err := q.Select("user_id, asset_id, SUM(amount) AS total").
			Group("user_id, asset_id").
			Order("user_id, asset_id").
			Scan(&sums).Error
		if err != nil {
			return nil, fmt.Errorf("failed to sum active holds: %w", err)
		}
		return sums, nil
	}

	var holds []models.Hold
	if err := q.Order("user_id, asset_id").Find(&holds).Error; err != nil {
		return nil, fmt.Errorf("failed to sum active holds: %w", err)
	}
	var sums []holdSum
	for _, h := range holds {
		n := len(sums)
		if n > 0 && sums[n-1].UserID == h.UserID && sums[n-1].AssetID == h.AssetID {
			sums[n-1].Total = sums[n-1].Total.Add(h.Amount.Decimal)
			continue
		}
		sums = append(sums, holdSum{UserID: h.UserID, AssetID: h.AssetID, Total: h.Amount.Decimal})
	}
	return sums, nil
}

type ledgerTx struct {
	db          *gorm.DB
	postgres    bool
	afterCommit []func(context.Context)
}

// forUpdate adds SELECT ... FOR UPDATE. SQLite has no row locks; its writers
// are already serialized by the single connection.
func (t *ledgerTx) forUpdate() *gorm.DB {
	if t.postgres {
		return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return t.db
}

func (t *ledgerTx) GetBalanceForUpdate(userID, assetID uint) (*models.Balance, error) {
	var balance models.Balance
	err := t.forUpdate().
		Where("user_id = ? AND asset_id = ?", userID, assetID).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBalanceNotFound
		}
		return nil, fmt.Errorf("failed to lock balance: %w", translateError(err))
	}
	return &balance, nil
}

func (t *ledgerTx) GetOrCreateBalanceForUpdate(userID, assetID uint) (*models.Balance, error) {
	seed := models.Balance{
		UserID:    userID,
		AssetID:   assetID,
		Available: models.NewAmount(decimal.Zero),
		Locked:    models.NewAmount(decimal.Zero),
	}
	err := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", translateError(err))
	}
	return t.GetBalanceForUpdate(userID, assetID)
}

func (t *ledgerTx) SaveBalance(balance *models.Balance) error {
	if err := balance.Validate(); err != nil {
		return err
	}
	balance.UpdatedAt = time.Now().UTC()

	result := t.db.Model(&models.Balance{}).
		Where("user_id = ? AND asset_id = ?", balance.UserID, balance.AssetID).
		Updates(map[string]interface{}{
			"available":  balance.Available,
			"locked":     balance.Locked,
			"updated_at": balance.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update balance: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return ErrBalanceNotFound
	}
	return nil
}

func (t *ledgerTx) FindActiveHold(userID, assetID uint, refType, refID string) (*models.Hold, error) {
	return findActiveHold(t.db, userID, assetID, refType, refID)
}

func (t *ledgerTx) GetHoldForUpdate(id uuid.UUID) (*models.Hold, error) {
	return getHold(t.forUpdate(), id)
}

func (t *ledgerTx) CreateHold(hold *models.Hold) error {
	if err := t.db.Create(hold).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateActiveHold
		}
		return fmt.Errorf("failed to create hold: %w", translateError(err))
	}
	return nil
}

// TransitionHold moves an ACTIVE hold to a terminal status. The update is
// conditional on the row still being ACTIVE.
func (t *ledgerTx) TransitionHold(hold *models.Hold, to models.HoldStatus) error {
	if !hold.Status.CanTransition(to) {
		return ErrHoldConflict
	}
	now := time.Now().UTC()

	result := t.db.Model(&models.Hold{}).
		Where("id = ? AND status = ?", hold.ID, models.HoldStatusActive).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update hold: %w", translateError(result.Error))
	}
	if result.RowsAffected != 1 {
		return ErrHoldConflict
	}

	hold.Status = to
	hold.UpdatedAt = now
	return nil
}

func (t *ledgerTx) LockUserDeposits(userID uint) error {
	if !t.postgres {
		return nil
	}
	key := fmt.Sprintf("deposit-limit:%d", userID)
	if err := t.db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error; err != nil {
		return fmt.Errorf("failed to lock user deposits: %w", translateError(err))
	}
	return nil
}

func (t *ledgerTx) SumDepositsSince(userID uint, since time.Time) (decimal.Decimal, error) {
	q := t.db.Model(&models.CashDeposit{}).
		Where("user_id = ? AND created_at >= ?", userID, since.UTC())

	total := decimal.Zero
	if t.postgres {
		if err := q.Select("COALESCE(SUM(amount_usd), 0)").Row().Scan(&total); err != nil {
			return decimal.Zero, fmt.Errorf("failed to sum deposits: %w", translateError(err))
		}
		return total, nil
	}

	// Exact text amounts on SQLite; see sumActiveHolds.
	var amounts []models.Amount
	if err := q.Pluck("amount_usd", &amounts).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum deposits: %w", translateError(err))
	}
	for _, a := range amounts {
		total = total.Add(a.Decimal)
	}
	return total, nil
}

func (t *ledgerTx) CreateCashDeposit(deposit *models.CashDeposit) error {
	if err := t.db.Create(deposit).Error; err != nil {
		return fmt.Errorf("failed to record cash deposit: %w", translateError(err))
	}
	return nil
}

func (t *ledgerTx) AfterCommit(fn func(ctx context.Context)) {
	t.afterCommit = append(t.afterCommit, fn)
}

func getHold(db *gorm.DB, id uuid.UUID) (*models.Hold, error) {
	var hold models.Hold
	if err := db.Where("id = ?", id).First(&hold).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to get hold: %w", translateError(err))
	}
	return &hold, nil
}

func findActiveHold(db *gorm.DB, userID, assetID uint, refType, refID string) (*models.Hold, error) {
	var hold models.Hold
	err := db.Where("user_id = ? AND asset_id = ? AND ref_type = ? AND ref_id = ? AND status = ?",
		userID, assetID, refType, refID, models.HoldStatusActive).
		First(&hold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to find active hold: %w", translateError(err))
	}
	return &hold, nil
}
