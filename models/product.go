package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go out as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ProductCategory decides which addons a product accepts and whether a deposit applies
type ProductCategory string

const (
	CategoryBurger  ProductCategory = "burger"
	CategoryFries   ProductCategory = "fries"
	CategoryDrink   ProductCategory = "drink"
	CategorySide    ProductCategory = "side"
	CategoryDessert ProductCategory = "dessert"
)

// Valid reports whether c is a known category
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryBurger, CategoryFries, CategoryDrink, CategorySide, CategoryDessert:
		return true
	}
	return false
}

type Product struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"not null"`
	Description  string          `json:"description"`
	Category     ProductCategory `json:"category" gorm:"not null;index"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Available    bool            `json:"available" gorm:"default:true"`
	DisplayOrder int             `json:"display_order" gorm:"default:0"`
	ImageURL     string          `json:"image_url"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AddonCategory groups addons for eligibility: fries only take sauces and premium sauces
type AddonCategory string

const (
	AddonRegular AddonCategory = "regular"
	AddonSauce   AddonCategory = "sauce"
	AddonPremium AddonCategory = "premium"
)

func (c AddonCategory) Valid() bool {
	switch c {
	case AddonRegular, AddonSauce, AddonPremium:
		return true
	}
	return false
}

type Addon struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"not null;uniqueIndex"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Category     AddonCategory   `json:"category" gorm:"not null;default:'regular'"`
	Available    bool            `json:"available" gorm:"default:true"`
	DisplayOrder int             `json:"display_order" gorm:"default:0"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
