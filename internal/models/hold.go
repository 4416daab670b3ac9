package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "ACTIVE"
	HoldStatusReleased HoldStatus = "RELEASED"
	HoldStatusCaptured HoldStatus = "CAPTURED"
)

// IsTerminal reports whether no further transition is allowed.
func (s HoldStatus) IsTerminal() bool {
	return s == HoldStatusReleased || s == HoldStatusCaptured
}

// CanTransition reports whether s -> to is a legal hold transition.
// Only ACTIVE holds move, and only into a terminal state.
func (s HoldStatus) CanTransition(to HoldStatus) bool {
	return s == HoldStatusActive && to.IsTerminal()
}

func (s HoldStatus) Valid() bool {
	switch s {
	case HoldStatusActive, HoldStatusReleased, HoldStatusCaptured:
		return true
	}
	return false
}

// Hold reserves Amount of a balance against a business reference
// (RefType, RefID), e.g. ("ORDER", "<order id>"). Holds are never deleted.
type Hold struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint       `gorm:"not null;index:idx_holds_user_status,priority:1" json:"user_id"`
	AssetID   uint       `gorm:"not null" json:"asset_id"`
	Amount    Amount     `gorm:"not null" json:"amount"`
	Status    HoldStatus `gorm:"type:varchar(16);not null;index:idx_holds_user_status,priority:2" json:"status"`
	RefType   string     `gorm:"type:varchar(32);not null" json:"ref_type"`
	RefID     string     `gorm:"type:varchar(128);not null" json:"ref_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Hold) TableName() string {
	return "holds"
}

func (h *Hold) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.Status == "" {
		h.Status = HoldStatusActive
	}
	return nil
}
