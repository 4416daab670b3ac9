package models

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

var ErrImmutableDeposit = errors.New("cash deposits are append-only")

// CashDeposit is an append-only record of a cash-equivalent deposit, kept to
// compute rolling-window deposit totals. IDs are ULIDs so they sort by time.
type CashDeposit struct {
	ID        string    `gorm:"type:char(26);primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_cash_deposits_user_time,priority:1" json:"user_id"`
	AssetID   uint      `gorm:"not null" json:"asset_id"`
	AmountUSD Amount    `gorm:"column:amount_usd;not null" json:"amount_usd"`
	CreatedAt time.Time `gorm:"not null;index:idx_cash_deposits_user_time,priority:2" json:"created_at"`
}

func (CashDeposit) TableName() string {
	return "cash_deposits"
}

func (d *CashDeposit) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = ulid.Make().String()
	}
	return nil
}

// BeforeUpdate keeps deposit history immutable.
func (d *CashDeposit) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableDeposit
}
