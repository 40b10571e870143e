// Package catalog keeps an in-memory snapshot of the menu (products, addons,
// delivery zones) that checkout prices against.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"burger-ordering-api/metrics"
	"burger-ordering-api/models"
	"burger-ordering-api/pricing"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Snapshot is an immutable copy of the menu at LoadedAt
type Snapshot struct {
	Products []models.Product
	Addons   []models.Addon
	Zones    []models.DeliveryZone
	LoadedAt time.Time
}

// Product returns the product with id
func (s *Snapshot) Product(id uint) (models.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// AvailableAddons returns addons that can be ordered right now
func (s *Snapshot) AvailableAddons() []models.Addon {
	out := make([]models.Addon, 0, len(s.Addons))
	for _, a := range s.Addons {
		if a.Available {
			out = append(out, a)
		}
	}
	return out
}

// Pricer builds an addon price table over the snapshot with the default fallback
func (s *Snapshot) Pricer() *pricing.Table {
	return pricing.NewTable(s.Addons, pricing.DefaultAddons)
}

type Cache struct {
	mu   sync.RWMutex
	db   *gorm.DB
	snap *Snapshot
}

func NewCache(db *gorm.DB) *Cache {
	return &Cache{db: db, snap: &Snapshot{}}
}

// Snapshot returns the current menu. Callers must not modify it.
func (c *Cache) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Refresh reloads the menu from the database
func (c *Cache) Refresh(ctx context.Context) error {
	db := c.db.WithContext(ctx)
	next := &Snapshot{LoadedAt: time.Now()}
	if err := db.Order("display_order asc, id asc").Find(&next.Products).Error; err != nil {
		metrics.MenuRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("load products: %w", err)
	}
	if err := db.Order("display_order asc, id asc").Find(&next.Addons).Error; err != nil {
		metrics.MenuRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("load addons: %w", err)
	}
	if err := db.Order("min_distance_km asc, id asc").Find(&next.Zones).Error; err != nil {
		metrics.MenuRefreshes.WithLabelValues("error").Inc()
		return fmt.Errorf("load zones: %w", err)
	}

	c.mu.Lock()
	c.snap = next
	c.mu.Unlock()
	metrics.MenuRefreshes.WithLabelValues("ok").Inc()
	return nil
}

// Run refreshes the snapshot every interval until ctx is done
func (c *Cache) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				log.WithError(err).Warn("Menu refresh failed, keeping previous snapshot")
			}
		}
	}
}
