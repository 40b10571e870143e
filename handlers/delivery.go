package handlers

import (
	"errors"
	"net/http"

	"burger-ordering-api/config"
	"burger-ordering-api/delivery"
	"burger-ordering-api/metrics"
	"burger-ordering-api/models"
	"burger-ordering-api/money"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListZones returns the active delivery zones (public)
func ListZones(c *gin.Context) {
	zones := []models.DeliveryZone{}
	for _, z := range svc.Menu.Snapshot().Zones {
		if z.Active {
			zones = append(zones, z)
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(zones), "zones": zones})
}

type DeliveryQuoteRequest struct {
	Address    string      `json:"address"`
	DistanceKm *float64    `json:"distance_km"`
	Subtotal   interface{} `json:"subtotal"`
}

// QuoteDelivery resolves the delivery fee and ETA for an address or distance (public)
func QuoteDelivery(c *gin.Context) {
	var req DeliveryQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DistanceKm == nil && req.Address == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address or distance_km is required"})
		return
	}

	distance := resolveDistance(c.Request.Context(), req.DistanceKm, req.Address, true)
	subtotal := money.Coerce(req.Subtotal, decimal.Zero)
	q, err := delivery.Resolve(distance, svc.Menu.Snapshot().Zones, subtotal)
	metrics.DeliveryQuotes.WithLabelValues(deliveryOutcome(q, err)).Inc()
	if errors.Is(err, delivery.ErrOutOfRange) {
		c.JSON(http.StatusOK, gin.H{
			"deliverable": false,
			"reason":      err.Error(),
			"distance_km": distance,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deliverable": true,
		"quote":       q,
	})
}

type ZoneRequest struct {
	Name          string             `json:"name"`
	MinDistanceKm *float64           `json:"min_distance_km" binding:"required"`
	MaxDistanceKm *float64           `json:"max_distance_km" binding:"required"`
	MinOrderValue interface{}        `json:"min_order_value"`
	PricingType   models.PricingType `json:"pricing_type" binding:"required"`
	CostFixed     interface{}        `json:"cost_fixed"`
	CostPerKm     interface{}        `json:"cost_per_km"`
	FreeOver      interface{}        `json:"free_over"`
	EtaMinMinutes int                `json:"eta_min_minutes"`
	EtaMaxMinutes int                `json:"eta_max_minutes"`
	Active        *bool              `json:"active"`
}

func (r *ZoneRequest) apply(z *models.DeliveryZone) {
	z.Name = r.Name
	z.MinDistanceKm = *r.MinDistanceKm
	z.MaxDistanceKm = *r.MaxDistanceKm
	z.MinOrderValue = money.Coerce(r.MinOrderValue, decimal.Zero)
	z.PricingType = r.PricingType
	z.CostFixed = money.Coerce(r.CostFixed, decimal.Zero)
	z.CostPerKm = money.Coerce(r.CostPerKm, decimal.Zero)
	z.FreeOver = nil
	if r.FreeOver != nil {
		if v := money.Coerce(r.FreeOver, decimal.NewFromInt(-1)); !v.IsNegative() {
			z.FreeOver = &v
		}
	}
	z.EtaMinMinutes = r.EtaMinMinutes
	z.EtaMaxMinutes = r.EtaMaxMinutes
	if r.Active != nil {
		z.Active = *r.Active
	}
}

// checkZone validates z and rejects overlaps with the other active zones
func checkZone(z models.DeliveryZone) error {
	if err := delivery.ValidateZone(z); err != nil {
		return newAPIError(http.StatusBadRequest, err.Error())
	}
	var others []models.DeliveryZone
	config.DB.Where("id <> ?", z.ID).Find(&others)
	if a, b, found := delivery.Overlaps(append(others, z)); found {
		return &apiError{
			Status:  http.StatusConflict,
			Message: "Delivery zones overlap",
			Details: gin.H{"zones": []string{a.Name, b.Name}},
		}
	}
	return nil
}

// AdminListZones returns all delivery zones including inactive ones (admin, staff)
func AdminListZones(c *gin.Context) {
	var zones []models.DeliveryZone
	config.DB.Order("min_distance_km asc").Find(&zones)
	c.JSON(http.StatusOK, gin.H{"count": len(zones), "zones": zones})
}

// AdminCreateZone adds a delivery zone (admin)
func AdminCreateZone(c *gin.Context) {
	var req ZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	zone := models.DeliveryZone{Active: true}
	req.apply(&zone)
	if err := checkZone(zone); err != nil {
		respondError(c, err)
		return
	}

	active := zone.Active
	if err := config.DB.Create(&zone).Error; err != nil {
		respondError(c, err)
		return
	}
	if !active {
		zone.Active = false
		// gorm skips false in favour of the column default
		config.DB.Model(&zone).Update("active", false)
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Delivery zone created", "zone": zone})
}

// AdminUpdateZone replaces a delivery zone (admin)
func AdminUpdateZone(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var zone models.DeliveryZone
	if err := config.DB.First(&zone, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Delivery zone not found"})
		return
	}
	var req ZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.apply(&zone)
	if err := checkZone(zone); err != nil {
		respondError(c, err)
		return
	}

	if err := config.DB.Save(&zone).Error; err != nil {
		respondError(c, err)
		return
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Delivery zone updated", "zone": zone})
}

// AdminDeleteZone removes a delivery zone (admin)
func AdminDeleteZone(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := config.DB.Delete(&models.DeliveryZone{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Delivery zone not found"})
		return
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Delivery zone deleted"})
}
