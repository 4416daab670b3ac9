package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrNegativeBalance is returned when a write would leave either side of a
// balance below zero.
var ErrNegativeBalance = errors.New("balance cannot be negative")

// Balance is the per-user, per-asset aggregate. Available funds can be locked
// or withdrawn; locked funds are reserved by ACTIVE holds.
type Balance struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	AssetID   uint      `gorm:"primaryKey;autoIncrement:false" json:"asset_id"`
	Available Amount    `gorm:"not null;default:0" json:"available"`
	Locked    Amount    `gorm:"not null;default:0" json:"locked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Balance) TableName() string {
	return "balances"
}

// Total is available + locked.
func (b *Balance) Total() decimal.Decimal {
	return b.Available.Add(b.Locked.Decimal)
}

func (b *Balance) Validate() error {
	if b.Available.IsNegative() || b.Locked.IsNegative() {
		return ErrNegativeBalance
	}
	return nil
}

func (b *Balance) BeforeSave(tx *gorm.DB) error {
	return b.Validate()
}
