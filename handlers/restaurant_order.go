package handlers

import (
	"net/http"
	"strings"
	"time"

	"burger-ordering-api/config"
	"burger-ordering-api/delivery"
	"burger-ordering-api/discount"
	"burger-ordering-api/extract"
	"burger-ordering-api/middleware"
	"burger-ordering-api/models"
	"burger-ordering-api/notify"
	"burger-ordering-api/pricing"
	"burger-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ItemView is an order line with addons and attributes in canonical form,
// whatever shape the stored row uses
type ItemView struct {
	ID             uint                `json:"id"`
	ProductID      uint                `json:"product_id"`
	Name           string              `json:"name"`
	Category       string              `json:"category"`
	UnitPrice      decimal.Decimal     `json:"unit_price"`
	Quantity       int                 `json:"quantity"`
	Addons         []extract.Selection `json:"addons"`
	Attributes     []extract.Attribute `json:"attributes"`
	ExtraMeatCount int                 `json:"extra_meat_count"`
	Note           string              `json:"note,omitempty"`
	LineTotal      decimal.Decimal     `json:"line_total"`
}

func normalizeItems(items []models.OrderItem) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, ItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Category:  string(it.Category),
			UnitPrice: it.UnitPrice,
			Quantity:  max(it.Quantity, 1),
			Addons:    extract.Addons(it.Addons),
			// older rows keep meat and doneness flags inside the addons blob
			Attributes:     extract.Attributes([]any{it.Addons, it.Attributes}, string(it.Category)),
			ExtraMeatCount: max(it.ExtraMeatCount, 0),
			Note:           it.Note,
			LineTotal:      it.LineTotal,
		})
	}
	return out
}

// AdminListOrders returns orders with a dashboard summary (admin, staff)
func AdminListOrders(c *gin.Context) {
	query := config.DB.Preload("Items")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if option := c.Query("option"); option != "" {
		query = query.Where("selected_option = ?", option)
	}
	if day := c.Query("date"); day != "" {
		start, err := time.ParseInLocation("2006-01-02", day, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 0, 1))
	}

	var orders []models.Order
	if err := query.Order("created_at desc").Find(&orders).Error; err != nil {
		respondError(c, err)
		return
	}

	summary := map[string]int{}
	revenue := decimal.Zero
	views := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		summary[string(o.Status)]++
		if o.Status != models.StatusCancelled {
			revenue = revenue.Add(o.TotalPrice)
		}
		views = append(views, gin.H{
			"order":             o,
			"items":             normalizeItems(o.Items),
			"valid_next_states": statemachine.ValidTransitionsFrom(o.Status),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"order_summary": summary,
		"revenue":       revenue,
		"count":         len(orders),
		"orders":        views,
	})
}

// AdminGetOrder returns a single order with its history (admin, staff)
func AdminGetOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var order models.Order
	if err := config.DB.Preload("Items").Preload("StatusHistory").First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":             order,
		"items":             normalizeItems(order.Items),
		"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
	})
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
	Note   string             `json:"note"`
}

// UpdateOrderStatus moves an order through the back-office lifecycle (admin, staff)
func UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	actor := string(middleware.GetRole(c))
	if err := statemachine.CanTransition(order.Status, req.Status, actor); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":             "Invalid state transition",
			"current_status":    order.Status,
			"requested":         req.Status,
			"reason":            err.Error(),
			"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
		})
		return
	}

	prevStatus := order.Status
	if err := changeStatus(&order, req.Status, middleware.GetUserID(c), req.Note); err != nil {
		respondError(c, err)
		return
	}

	if svc.Notifier != nil {
		msg := notify.StatusMessage(order.Number, order.Status, orderETA(&order))
		if err := svc.Notifier.SMS(c.Request.Context(), order.Phone, msg); err != nil {
			log.WithError(err).WithField("order", order.Number).Warn("Status SMS failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Order status updated",
		"order_id":        order.ID,
		"previous_status": string(prevStatus),
		"current_status":  string(order.Status),
	})
}

// orderETA is the delivery zone ETA for delivery orders, empty otherwise
func orderETA(order *models.Order) string {
	if order.SelectedOption != models.OptionDelivery || svc.Menu == nil {
		return ""
	}
	q, err := delivery.Resolve(order.DistanceKm, svc.Menu.Snapshot().Zones, order.Subtotal)
	if err != nil {
		return ""
	}
	return q.ETA
}

type UpdatePaymentRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required"`
}

// UpdatePaymentStatus records the payment outcome (admin, staff)
func UpdatePaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.PaymentStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment_status. Must be: pending, paid, failed, or refunded"})
		return
	}

	res := config.DB.Model(&models.Order{}).Where("id = ?", id).Update("payment_status", req.PaymentStatus)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment status updated", "order_id": id, "payment_status": req.PaymentStatus})
}

type UpdateOrderItemsRequest struct {
	Items []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderItems replaces the lines of an open order and re-prices it at
// current menu prices, keeping the delivery fee (admin, staff)
func UpdateOrderItems(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if statemachine.IsTerminal(order.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "Order is " + string(order.Status) + " and can no longer be edited"})
		return
	}

	items, lines, err := priceLines(svc.Menu.Snapshot(), req.Items)
	if err != nil {
		respondError(c, err)
		return
	}

	b := svc.Rules.OrderTotal(pricing.Totals{
		Lines:    lines,
		Option:   order.SelectedOption,
		Delivery: order.DeliveryCost,
	})
	discountAmount := order.DiscountAmount
	if code := strings.TrimSpace(order.PromoCode); code != "" {
		var dc models.DiscountCode
		if err := config.DB.Where("code = ?", code).First(&dc).Error; err == nil {
			discountAmount = discount.Amount(dc, b.Gross())
		}
	}
	b = b.WithDiscount(discountAmount)

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"subtotal":        b.Subtotal,
			"packaging_cost":  b.Packaging,
			"discount_amount": b.Discount,
			"total_price":     b.Total,
		}).Error
	})
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithFields(log.Fields{
		"order": order.Number,
		"by":    middleware.GetUserID(c),
		"total": b.Total.StringFixed(2),
	}).Info("Order items edited")

	c.JSON(http.StatusOK, gin.H{
		"message":   "Order items updated",
		"order_id":  order.ID,
		"items":     normalizeItems(items),
		"breakdown": b,
	})
}
