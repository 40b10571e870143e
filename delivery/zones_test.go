package delivery

import (
	"errors"
	"testing"

	"burger-ordering-api/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func km(f float64) *float64 {
	return &f
}

func testZones() []models.DeliveryZone {
	return []models.DeliveryZone{
		{ID: 2, MinDistanceKm: 3, MaxDistanceKm: 10, PricingType: models.PricingPerKm, CostPerKm: dec("2"), EtaMinMinutes: 45, EtaMaxMinutes: 60, Active: true},
		{ID: 1, MinDistanceKm: 0, MaxDistanceKm: 3, PricingType: models.PricingFlat, CostFixed: dec("10"), EtaMinMinutes: 30, EtaMaxMinutes: 45, Active: true},
	}
}

func TestResolvePerKmZone(t *testing.T) {
	q, err := Resolve(km(5), testZones(), dec("50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.ZoneID != 2 {
		t.Errorf("expected zone 2, got %d", q.ZoneID)
	}
	if !q.Cost.Equal(dec("10")) {
		t.Errorf("expected cost 10, got %s", q.Cost)
	}
	if q.ETA != "45-60 min" {
		t.Errorf("unexpected ETA %q", q.ETA)
	}
}

func TestResolveFlatZoneAndBoundary(t *testing.T) {
	q, err := Resolve(km(3), testZones(), dec("50"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.ZoneID != 1 || !q.Cost.Equal(dec("10")) {
		t.Errorf("expected flat zone 1 with cost 10, got zone %d cost %s", q.ZoneID, q.Cost)
	}
}

func TestResolveOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		distance *float64
		zones    []models.DeliveryZone
	}{
		{"beyond zones", km(12), testZones()},
		{"unknown distance", nil, testZones()},
		{"negative distance", km(-1), testZones()},
		{"no zones", km(1), nil},
		{"inactive zones only", km(1), []models.DeliveryZone{{MinDistanceKm: 0, MaxDistanceKm: 5, Active: false}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Resolve(tt.distance, tt.zones, dec("100")); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("expected ErrOutOfRange, got %v", err)
			}
		})
	}
}

func TestResolveFreeOver(t *testing.T) {
	free := dec("60")
	zones := []models.DeliveryZone{
		{ID: 1, MinDistanceKm: 0, MaxDistanceKm: 5, PricingType: models.PricingFlat, CostFixed: dec("8"), FreeOver: &free, Active: true},
	}
	q, err := Resolve(km(2), zones, dec("50"))
	if err != nil {
		t.Fatal(err)
	}
	if q.Cost.IsZero() || q.FreeDelivery {
		t.Errorf("subtotal 50: expected paid delivery, got %s", q.Cost)
	}
	q, err = Resolve(km(2), zones, dec("65"))
	if err != nil {
		t.Fatal(err)
	}
	if !q.Cost.IsZero() || !q.FreeDelivery {
		t.Errorf("subtotal 65: expected free delivery, got %s", q.Cost)
	}
}

func TestResolveBelowMinimum(t *testing.T) {
	zones := []models.DeliveryZone{
		{ID: 1, MinDistanceKm: 0, MaxDistanceKm: 5, PricingType: models.PricingFlat, CostFixed: dec("8"), MinOrderValue: dec("40"), Active: true},
	}
	q, err := Resolve(km(1), zones, dec("25.50"))
	if err != nil {
		t.Fatal(err)
	}
	if !q.BelowMinimum || !q.MissingAmount.Equal(dec("14.50")) {
		t.Errorf("expected below minimum by 14.50, got %+v", q)
	}
	q, _ = Resolve(km(1), zones, dec("40"))
	if q.BelowMinimum {
		t.Error("subtotal equal to minimum should pass")
	}
}

func TestFormatETA(t *testing.T) {
	if got := FormatETA(30, 45); got != "30-45 min" {
		t.Errorf("got %q", got)
	}
	if got := FormatETA(40, 40); got != "40 min" {
		t.Errorf("got %q", got)
	}
	if got := FormatETA(0, 0); got != "" {
		t.Errorf("got %q", got)
	}
}

func TestOverlaps(t *testing.T) {
	if _, _, found := Overlaps(testZones()); found {
		t.Error("touching zones should not overlap")
	}
	zones := append(testZones(), models.DeliveryZone{ID: 3, MinDistanceKm: 8, MaxDistanceKm: 15, Active: true})
	a, b, found := Overlaps(zones)
	if !found || a.ID != 2 || b.ID != 3 {
		t.Errorf("expected zones 2 and 3 to overlap, got %d %d %v", a.ID, b.ID, found)
	}
}
