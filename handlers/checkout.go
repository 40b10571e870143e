package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"burger-ordering-api/catalog"
	"burger-ordering-api/config"
	"burger-ordering-api/delivery"
	"burger-ordering-api/discount"
	"burger-ordering-api/extract"
	"burger-ordering-api/metrics"
	"burger-ordering-api/models"
	"burger-ordering-api/money"
	"burger-ordering-api/pricing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderLineRequest is one product in a checkout. Addons and attributes are
// accepted in any of the shapes extract understands.
type OrderLineRequest struct {
	ProductID      uint            `json:"product_id" binding:"required"`
	Quantity       interface{}     `json:"quantity"`
	Addons         json.RawMessage `json:"addons"`
	Attributes     json.RawMessage `json:"attributes"`
	ExtraMeatCount int             `json:"extra_meat_count" binding:"min=0"`
	Note           string          `json:"note"`
}

type CheckoutRequest struct {
	CustomerName  string                   `json:"customer_name"`
	Phone         string                   `json:"phone"`
	Email         string                   `json:"email"`
	Address       string                   `json:"address"`
	DistanceKm    *float64                 `json:"distance_km"`
	Option        models.FulfillmentOption `json:"option" binding:"required"`
	PaymentMethod models.PaymentMethod     `json:"payment_method"`
	PromoCode     string                   `json:"promo_code"`
	Notes         string                   `json:"notes"`
	Items         []OrderLineRequest       `json:"items" binding:"required,min=1,dive"`
}

// storedAddon is the persisted addon format, prices captured at order time
type storedAddon struct {
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
}

// checkout is a fully priced order that has not been saved yet
type checkout struct {
	Items      []models.OrderItem
	Breakdown  pricing.Breakdown
	Delivery   *delivery.Quote
	DistanceKm *float64
	Discount   discount.Applied
}

// priceLines turns requested lines into order items priced against the menu snapshot
func priceLines(snap *catalog.Snapshot, lines []OrderLineRequest) ([]models.OrderItem, []decimal.Decimal, error) {
	prices := snap.Pricer()
	available := map[string]bool{}
	for _, a := range snap.Addons {
		available[extract.Fold(a.Name)] = a.Available
	}

	items := make([]models.OrderItem, 0, len(lines))
	totals := make([]decimal.Decimal, 0, len(lines))
	for _, l := range lines {
		product, ok := snap.Product(l.ProductID)
		if !ok {
			return nil, nil, newAPIError(http.StatusNotFound, fmt.Sprintf("Product %d not found", l.ProductID))
		}
		if !product.Available {
			return nil, nil, newAPIError(http.StatusUnprocessableEntity, "Product '"+product.Name+"' is not available")
		}
		if l.ExtraMeatCount > 0 && product.Category != models.CategoryBurger {
			return nil, nil, newAPIError(http.StatusUnprocessableEntity, "Extra meat is only available for burgers")
		}

		var addons []storedAddon
		var selections []extract.Selection
		for _, sel := range extract.Addons(l.Addons) {
			info, known := prices.Lookup(sel.Name)
			if !known || !pricing.Eligible(product.Category, product.Name, info) {
				continue
			}
			if avail, live := available[extract.Fold(info.Name)]; live && !avail {
				return nil, nil, newAPIError(http.StatusUnprocessableEntity, "Addon '"+info.Name+"' is not available")
			}
			selections = append(selections, extract.Selection{Name: info.Name, Qty: sel.Qty})
			addons = append(addons, storedAddon{Name: info.Name, Qty: sel.Qty, Price: info.Price})
		}
		if addons == nil {
			addons = []storedAddon{}
		}
		attrs := extract.Attributes(l.Attributes, string(product.Category))

		item := pricing.Item{
			Name:           product.Name,
			Category:       product.Category,
			UnitPrice:      product.Price,
			Quantity:       money.Quantity(l.Quantity, 1),
			Addons:         selections,
			ExtraMeatCount: l.ExtraMeatCount,
		}
		lineTotal := svc.Rules.LineTotal(item, prices)

		addonsJSON, _ := json.Marshal(addons)
		attrsJSON, _ := json.Marshal(attrs)
		items = append(items, models.OrderItem{
			ProductID:      product.ID,
			Name:           product.Name,
			Category:       product.Category,
			UnitPrice:      product.Price,
			Quantity:       item.Quantity,
			Addons:         datatypes.JSON(addonsJSON),
			Attributes:     datatypes.JSON(attrsJSON),
			ExtraMeatCount: l.ExtraMeatCount,
			Note:           strings.TrimSpace(l.Note),
			LineTotal:      lineTotal,
		})
		totals = append(totals, lineTotal)
	}
	return items, totals, nil
}

// resolveDistance geocodes address. A client-supplied distance is only taken
// when trustClient is set (quotes) or no geocoder is configured. A failed
// lookup yields nil, which resolves to out of range.
func resolveDistance(ctx context.Context, distanceKm *float64, address string, trustClient bool) *float64 {
	if svc.Geocoder == nil || (trustClient && distanceKm != nil) {
		return distanceKm
	}
	if strings.TrimSpace(address) == "" {
		return nil
	}
	d, err := svc.Geocoder.DistanceKm(ctx, address)
	if err != nil {
		log.WithError(err).WithField("address", address).Warn("Geocoding failed")
		return nil
	}
	return &d
}

func deliveryOutcome(q delivery.Quote, err error) string {
	switch {
	case err != nil:
		return "out_of_range"
	case q.BelowMinimum:
		return "below_minimum"
	case q.FreeDelivery:
		return "free"
	}
	return "ok"
}

// redemptionCounter counts earlier uses of a code by the same phone number
func redemptionCounter(db *gorm.DB, phone string) discount.UsageFunc {
	phone = strings.TrimSpace(phone)
	return func(codeID uint) int {
		if phone == "" {
			return 0
		}
		var n int64
		db.Model(&models.DiscountRedemption{}).
			Where("code_id = ? AND phone = ?", codeID, phone).
			Count(&n)
		return int(n)
	}
}

func discountError(err error) *apiError {
	status := http.StatusUnprocessableEntity
	if errors.Is(err, discount.ErrNotFound) {
		status = http.StatusNotFound
	}
	return &apiError{Status: status, Message: "Discount code cannot be applied", Details: gin.H{"reason": err.Error()}}
}

// priceCheckout prices req without saving anything. Delivery problems are
// reported on the result so quotes can show them; strict callers check them.
// Only quotes may price delivery from a client-supplied distance.
func priceCheckout(ctx context.Context, req *CheckoutRequest, quote bool) (*checkout, error) {
	if !req.Option.Valid() {
		return nil, newAPIError(http.StatusBadRequest, "Invalid option. Must be: local, takeaway, or delivery")
	}
	snap := svc.Menu.Snapshot()

	items, lines, err := priceLines(snap, req.Items)
	if err != nil {
		return nil, err
	}
	subtotal := pricing.Subtotal(lines)

	out := &checkout{Items: items}
	deliveryCost := decimal.Zero
	if req.Option == models.OptionDelivery {
		out.DistanceKm = resolveDistance(ctx, req.DistanceKm, req.Address, quote)
		q, err := delivery.Resolve(out.DistanceKm, snap.Zones, subtotal)
		metrics.DeliveryQuotes.WithLabelValues(deliveryOutcome(q, err)).Inc()
		if err == nil {
			out.Delivery = &q
			deliveryCost = q.Cost
		}
	}

	out.Breakdown = svc.Rules.OrderTotal(pricing.Totals{Lines: lines, Option: req.Option, Delivery: deliveryCost})

	var userCode *models.DiscountCode
	if code := discount.Normalize(req.PromoCode); code != "" {
		var dc models.DiscountCode
		if err := config.DB.WithContext(ctx).Where("code = ?", code).First(&dc).Error; err != nil {
			if isNotFound(err) {
				return nil, discountError(discount.ErrNotFound)
			}
			return nil, err
		}
		userCode = &dc
	}
	var autos []models.DiscountCode
	config.DB.WithContext(ctx).Where("auto_apply = ? AND active = ?", true, true).Order("id asc").Find(&autos)

	applied, err := discount.Select(userCode, autos, subtotal, out.Breakdown.Gross(), svc.Now(), redemptionCounter(config.DB.WithContext(ctx), req.Phone))
	if err != nil {
		return nil, discountError(err)
	}
	out.Discount = applied
	out.Breakdown = out.Breakdown.WithDiscount(applied.Amount)
	return out, nil
}

// deliveryBlock returns the error that stops a delivery checkout, if any
func (co *checkout) deliveryBlock(option models.FulfillmentOption) error {
	if option != models.OptionDelivery {
		return nil
	}
	if co.Delivery == nil {
		return &apiError{
			Status:  http.StatusUnprocessableEntity,
			Message: delivery.ErrOutOfRange.Error(),
			Details: gin.H{"code": "out_of_range"},
		}
	}
	if co.Delivery.BelowMinimum {
		return &apiError{
			Status:  http.StatusUnprocessableEntity,
			Message: "Order is below the minimum value for this delivery zone",
			Details: gin.H{
				"code":           "below_minimum",
				"min_order":      co.Delivery.MinOrderValue,
				"missing_amount": co.Delivery.MissingAmount,
			},
		}
	}
	return nil
}

func (co *checkout) response() gin.H {
	body := gin.H{
		"items":     co.Items,
		"breakdown": co.Breakdown,
		"delivery":  co.Delivery,
	}
	if co.Discount.Code != nil {
		body["discount"] = gin.H{
			"code":   co.Discount.Code.Code,
			"auto":   co.Discount.Auto,
			"amount": co.Discount.Amount,
		}
	}
	return body
}

// QuoteCheckout prices a checkout without placing the order (public)
func QuoteCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	co, err := priceCheckout(c.Request.Context(), &req, true)
	if err != nil {
		respondError(c, err)
		return
	}

	body := co.response()
	body["can_checkout"] = true
	if blockErr := co.deliveryBlock(req.Option); blockErr != nil {
		ae := blockErr.(*apiError)
		body["can_checkout"] = false
		body["blocked_reason"] = ae.Details["code"]
		if missing, ok := ae.Details["missing_amount"]; ok {
			body["missing_amount"] = missing
		}
	}
	c.JSON(http.StatusOK, body)
}
