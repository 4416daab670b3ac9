package models

import "time"

// Asset is a catalog entry. IsCash marks cash equivalents (USD, USDT, ...)
// whose deposits count against the rolling deposit limit.
type Asset struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Symbol    string    `gorm:"type:varchar(16);uniqueIndex;not null" json:"symbol"`
	IsCash    bool      `gorm:"not null;default:false" json:"is_cash"`
	CreatedAt time.Time `json:"created_at"`
}

func (Asset) TableName() string {
	return "assets"
}
