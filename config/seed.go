package config

import (
	"fmt"
	"strings"

	"burger-ordering-api/models"
	"burger-ordering-api/money"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed is the initial menu written into an empty database
type Seed struct {
	Products []SeedProduct `yaml:"products"`
	Addons   []SeedAddon   `yaml:"addons"`
	Zones    []SeedZone    `yaml:"zones"`
}

type SeedProduct struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
}

type SeedAddon struct {
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Category string `yaml:"category"`
}

type SeedZone struct {
	Name          string  `yaml:"name"`
	MinDistanceKm float64 `yaml:"min_km"`
	MaxDistanceKm float64 `yaml:"max_km"`
	PricingType   string  `yaml:"pricing"`
	CostFixed     string  `yaml:"cost_fixed"`
	CostPerKm     string  `yaml:"cost_per_km"`
	MinOrderValue string  `yaml:"min_order"`
	FreeOver      string  `yaml:"free_over"`
	EtaMin        int     `yaml:"eta_min"`
	EtaMax        int     `yaml:"eta_max"`
}

func coerceRule(v string, def decimal.Decimal) decimal.Decimal {
	return money.Coerce(v, def)
}

// SeedMenu fills empty product, addon and zone tables
func SeedMenu(db *gorm.DB, seed Seed) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		tx.Model(&models.Product{}).Count(&count)
		if count == 0 {
			for i, p := range seed.Products {
				product := models.Product{
					Name:         p.Name,
					Description:  p.Description,
					Category:     models.ProductCategory(p.Category),
					Price:        money.Coerce(p.Price, decimal.Zero),
					Available:    true,
					DisplayOrder: i,
				}
				if err := tx.Create(&product).Error; err != nil {
					return fmt.Errorf("seed product %q: %w", p.Name, err)
				}
			}
			log.WithField("count", len(seed.Products)).Info("Seeded products")
		}

		tx.Model(&models.Addon{}).Count(&count)
		if count == 0 {
			for i, a := range seed.Addons {
				addon := models.Addon{
					Name:         a.Name,
					Price:        money.Coerce(a.Price, decimal.Zero),
					Category:     models.AddonCategory(a.Category),
					Available:    true,
					DisplayOrder: i,
				}
				if err := tx.Create(&addon).Error; err != nil {
					return fmt.Errorf("seed addon %q: %w", a.Name, err)
				}
			}
			log.WithField("count", len(seed.Addons)).Info("Seeded addons")
		}

		tx.Model(&models.DeliveryZone{}).Count(&count)
		if count == 0 {
			for _, z := range seed.Zones {
				zone := models.DeliveryZone{
					Name:          z.Name,
					MinDistanceKm: z.MinDistanceKm,
					MaxDistanceKm: z.MaxDistanceKm,
					PricingType:   models.PricingType(z.PricingType),
					CostFixed:     money.Coerce(z.CostFixed, decimal.Zero),
					CostPerKm:     money.Coerce(z.CostPerKm, decimal.Zero),
					MinOrderValue: money.Coerce(z.MinOrderValue, decimal.Zero),
					EtaMinMinutes: z.EtaMin,
					EtaMaxMinutes: z.EtaMax,
					Active:        true,
				}
				if z.FreeOver != "" {
					free := money.Coerce(z.FreeOver, decimal.Zero)
					zone.FreeOver = &free
				}
				if err := tx.Create(&zone).Error; err != nil {
					return fmt.Errorf("seed zone %q: %w", z.Name, err)
				}
			}
			log.WithField("count", len(seed.Zones)).Info("Seeded delivery zones")
		}
		return nil
	})
}

// EnsureAdmin creates the first admin account when no users exist
func EnsureAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{Name: "Administrator", Email: strings.ToLower(strings.TrimSpace(email)), PasswordHash: string(hash), Role: models.RoleAdmin}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.WithField("email", email).Info("Created initial admin account")
	return nil
}
