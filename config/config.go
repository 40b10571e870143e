package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"burger-ordering-api/models"
	"burger-ordering-api/pricing"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret signs back-office tokens, read from env or fallback
var JWTSecret = []byte(getEnv("JWT_SECRET", "burger_back_office_secret"))

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Port                string
	GinMode             string
	DatabasePath        string
	LogLevel            string
	AdminEmail          string
	AdminPassword       string
	CORSOrigins         []string
	GeocoderURL         string
	OriginLat           float64
	OriginLon           float64
	SMSGatewayURL       string
	SMSAPIKey           string
	PushGatewayURL      string
	MenuRefreshInterval time.Duration
	CartMaxAge          time.Duration
	Pricing             pricing.Rules
	Seed                Seed
}

// Defaults is the shape of defaults.yaml
type Defaults struct {
	Pricing struct {
		ExtraMeatPrice string `yaml:"extra_meat_price"`
		DepositAmount  string `yaml:"deposit_amount"`
		PackagingCost  string `yaml:"packaging_cost"`
	} `yaml:"pricing"`
	Origin struct {
		Lat float64 `yaml:"lat"`
		Lon float64 `yaml:"lon"`
	} `yaml:"origin"`
	Seed Seed `yaml:"seed"`
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.WithField("key", key).Warn("Ignoring non-numeric env value")
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.WithField("key", key).Warn("Ignoring invalid duration")
	}
	return fallback
}

// ParseDefaults decodes the YAML defaults document
func ParseDefaults(data []byte) (*Defaults, error) {
	var d Defaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse defaults: %w", err)
	}
	return &d, nil
}

// Load reads configuration from the environment (and .env outside production),
// falling back to the embedded defaults.yaml
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	defaults, err := ParseDefaults(defaultsYAML)
	if err != nil {
		return nil, err
	}

	rules := pricing.DefaultRules()
	rules.ExtraMeatPrice = coerceRule(getEnv("EXTRA_MEAT_PRICE", defaults.Pricing.ExtraMeatPrice), rules.ExtraMeatPrice)
	rules.DepositAmount = coerceRule(getEnv("DEPOSIT_AMOUNT", defaults.Pricing.DepositAmount), rules.DepositAmount)
	rules.PackagingCost = coerceRule(getEnv("PACKAGING_COST", defaults.Pricing.PackagingCost), rules.PackagingCost)

	JWTSecret = []byte(getEnv("JWT_SECRET", string(JWTSecret)))

	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		GinMode:             getEnv("GIN_MODE", "debug"),
		DatabasePath:        getEnv("DATABASE_PATH", "burger_orders.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		AdminPassword:       os.Getenv("ADMIN_PASSWORD"),
		CORSOrigins:         splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		GeocoderURL:         os.Getenv("GEOCODER_URL"),
		OriginLat:           getFloat("RESTAURANT_LAT", defaults.Origin.Lat),
		OriginLon:           getFloat("RESTAURANT_LON", defaults.Origin.Lon),
		SMSGatewayURL:       os.Getenv("SMS_GATEWAY_URL"),
		SMSAPIKey:           os.Getenv("SMS_API_KEY"),
		PushGatewayURL:      os.Getenv("PUSH_GATEWAY_URL"),
		MenuRefreshInterval: getDuration("MENU_REFRESH_INTERVAL", 15*time.Second),
		CartMaxAge:          getDuration("CART_MAX_AGE", 6*time.Hour),
		Pricing:             rules,
		Seed:                defaults.Seed,
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InitDB opens the SQLite database at path and migrates all models
func InitDB(path string) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Addon{},
		&models.DeliveryZone{},
		&models.DiscountCode{},
		&models.DiscountRedemption{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.Reservation{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	DB = db
	log.WithField("path", path).Info("Database connected and migrated")
	return nil
}
