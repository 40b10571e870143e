package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PricingType string

const (
	PricingFlat  PricingType = "flat"
	PricingPerKm PricingType = "per_km"
)

// DeliveryZone is a distance bucket [MinDistanceKm, MaxDistanceKm] with its own fee rule
type DeliveryZone struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	Name          string           `json:"name"`
	MinDistanceKm float64          `json:"min_distance_km" gorm:"not null"`
	MaxDistanceKm float64          `json:"max_distance_km" gorm:"not null"`
	MinOrderValue decimal.Decimal  `json:"min_order_value" gorm:"type:decimal(10,2);not null;default:0"`
	PricingType   PricingType      `json:"pricing_type" gorm:"not null;default:'flat'"`
	CostFixed     decimal.Decimal  `json:"cost_fixed" gorm:"type:decimal(10,2);not null;default:0"`
	CostPerKm     decimal.Decimal  `json:"cost_per_km" gorm:"type:decimal(10,2);not null;default:0"`
	FreeOver      *decimal.Decimal `json:"free_over" gorm:"type:decimal(10,2)"`
	EtaMinMinutes int              `json:"eta_min_minutes"`
	EtaMaxMinutes int              `json:"eta_max_minutes"`
	Active        bool             `json:"active" gorm:"default:true"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
