package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountAmount  DiscountType = "amount"
)

// DiscountCode is either typed in by the customer or, with AutoApply set, the global promotion.
// Zero MaxUses / PerUserMaxUses means unlimited.
type DiscountCode struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	Code           string          `json:"code" gorm:"not null;uniqueIndex"`
	Type           DiscountType    `json:"type" gorm:"not null"`
	Value          decimal.Decimal `json:"value" gorm:"type:decimal(10,2);not null"`
	MinOrder       decimal.Decimal `json:"min_order" gorm:"type:decimal(10,2);not null;default:0"`
	MaxUses        int             `json:"max_uses"`
	PerUserMaxUses int             `json:"per_user_max_uses"`
	UsedCount      int             `json:"used_count" gorm:"default:0"`
	StartsAt       *time.Time      `json:"starts_at"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	Active         bool            `json:"active" gorm:"default:true"`
	IsPublic       bool            `json:"is_public" gorm:"default:false"`
	AutoApply      bool            `json:"auto_apply" gorm:"default:false"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// DiscountRedemption records one use of a code so per-customer limits can be counted
type DiscountRedemption struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CodeID    uint      `json:"code_id" gorm:"not null;index"`
	OrderID   uint      `json:"order_id" gorm:"not null"`
	Phone     string    `json:"phone" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
