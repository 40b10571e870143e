// Package delivery resolves the delivery fee and ETA for a distance.
package delivery

import (
	"errors"
	"fmt"
	"sort"

	"burger-ordering-api/models"
	"burger-ordering-api/money"

	"github.com/shopspring/decimal"
)

// ErrOutOfRange means no active zone covers the distance, or the distance is unknown.
// Delivery checkout must be blocked in this state.
var ErrOutOfRange = errors.New("address is outside the delivery area")

// Quote is a resolved delivery
type Quote struct {
	ZoneID        uint            `json:"zone_id"`
	DistanceKm    float64         `json:"distance_km"`
	Cost          decimal.Decimal `json:"cost"`
	FreeDelivery  bool            `json:"free_delivery"`
	MinOrderValue decimal.Decimal `json:"min_order_value"`
	BelowMinimum  bool            `json:"below_minimum"`
	MissingAmount decimal.Decimal `json:"missing_amount"`
	EtaMinMinutes int             `json:"eta_min_minutes"`
	EtaMaxMinutes int             `json:"eta_max_minutes"`
	ETA           string          `json:"eta"`
}

// Resolve picks the first active zone, by ascending minimum distance, whose
// [min, max] range contains distanceKm, and prices the delivery for subtotal.
func Resolve(distanceKm *float64, zones []models.DeliveryZone, subtotal decimal.Decimal) (Quote, error) {
	if distanceKm == nil || *distanceKm < 0 {
		return Quote{}, ErrOutOfRange
	}
	d := *distanceKm

	zone, ok := match(d, zones)
	if !ok {
		return Quote{}, ErrOutOfRange
	}

	q := Quote{
		ZoneID:        zone.ID,
		DistanceKm:    d,
		MinOrderValue: zone.MinOrderValue,
		EtaMinMinutes: zone.EtaMinMinutes,
		EtaMaxMinutes: zone.EtaMaxMinutes,
		ETA:           FormatETA(zone.EtaMinMinutes, zone.EtaMaxMinutes),
		MissingAmount: decimal.Zero,
	}

	if zone.PricingType == models.PricingPerKm {
		q.Cost = money.Round(zone.CostPerKm.Mul(decimal.NewFromFloat(d)))
	} else {
		q.Cost = money.Round(zone.CostFixed)
	}
	if zone.FreeOver != nil && subtotal.GreaterThanOrEqual(*zone.FreeOver) {
		q.Cost = decimal.Zero
		q.FreeDelivery = true
	}

	if subtotal.LessThan(zone.MinOrderValue) {
		q.BelowMinimum = true
		q.MissingAmount = money.Round(zone.MinOrderValue.Sub(subtotal))
	}
	return q, nil
}

func match(d float64, zones []models.DeliveryZone) (models.DeliveryZone, bool) {
	active := make([]models.DeliveryZone, 0, len(zones))
	for _, z := range zones {
		if z.Active {
			active = append(active, z)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MinDistanceKm < active[j].MinDistanceKm
	})
	for _, z := range active {
		if z.MinDistanceKm <= d && d <= z.MaxDistanceKm {
			return z, true
		}
	}
	return models.DeliveryZone{}, false
}

// FormatETA renders an ETA range such as "30-45 min"
func FormatETA(minMinutes, maxMinutes int) string {
	switch {
	case minMinutes <= 0 && maxMinutes <= 0:
		return ""
	case maxMinutes <= minMinutes:
		return fmt.Sprintf("%d min", max(minMinutes, maxMinutes))
	}
	return fmt.Sprintf("%d-%d min", minMinutes, maxMinutes)
}

// ValidateZone checks a single zone's own fields
func ValidateZone(z models.DeliveryZone) error {
	switch {
	case z.MinDistanceKm < 0:
		return errors.New("min_distance_km must not be negative")
	case z.MaxDistanceKm < z.MinDistanceKm:
		return errors.New("max_distance_km must be greater than or equal to min_distance_km")
	case z.PricingType != models.PricingFlat && z.PricingType != models.PricingPerKm:
		return errors.New("pricing_type must be one of: flat, per_km")
	case z.CostFixed.IsNegative() || z.CostPerKm.IsNegative() || z.MinOrderValue.IsNegative():
		return errors.New("costs must not be negative")
	case z.EtaMaxMinutes < z.EtaMinMinutes:
		return errors.New("eta_max_minutes must be greater than or equal to eta_min_minutes")
	}
	return nil
}

// Overlaps returns the first pair of active zones whose ranges overlap.
// Touching boundaries (one zone's max equal to the next one's min) are allowed;
// the lower zone wins there.
func Overlaps(zones []models.DeliveryZone) (a, b models.DeliveryZone, found bool) {
	active := make([]models.DeliveryZone, 0, len(zones))
	for _, z := range zones {
		if z.Active {
			active = append(active, z)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].MinDistanceKm < active[j].MinDistanceKm
	})
	for i := 1; i < len(active); i++ {
		if active[i].MinDistanceKm < active[i-1].MaxDistanceKm {
			return active[i-1], active[i], true
		}
	}
	return models.DeliveryZone{}, models.DeliveryZone{}, false
}
