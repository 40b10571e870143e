package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"burger-ordering-api/config"
	"burger-ordering-api/discount"
	"burger-ordering-api/metrics"
	"burger-ordering-api/models"
	"burger-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// PlaceOrder prices and stores a new order (public)
func PlaceOrder(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, co, err := createOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placedResponse(order, co))
}

func placedResponse(order *models.Order, co *checkout) gin.H {
	body := gin.H{
		"message": "Order placed successfully",
		"order":   order,
	}
	if co.Delivery != nil {
		body["eta"] = co.Delivery.ETA
	}
	return body
}

// createOrder validates, prices and saves req in one transaction together
// with the discount redemption and the first history entry
func createOrder(ctx context.Context, req *CheckoutRequest) (*models.Order, *checkout, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.CustomerName == "" || req.Phone == "" {
		return nil, nil, newAPIError(http.StatusBadRequest, "customer_name and phone are required")
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}
	if !req.PaymentMethod.Valid() {
		return nil, nil, newAPIError(http.StatusBadRequest, "Invalid payment_method. Must be: cash, terminal, or online")
	}
	if req.Option == models.OptionDelivery && strings.TrimSpace(req.Address) == "" {
		return nil, nil, newAPIError(http.StatusBadRequest, "address is required for delivery")
	}

	co, err := priceCheckout(ctx, req, false)
	if err != nil {
		return nil, nil, err
	}
	if err := co.deliveryBlock(req.Option); err != nil {
		return nil, nil, err
	}

	order := models.Order{
		Number:         uuid.NewString(),
		CustomerName:   req.CustomerName,
		Phone:          req.Phone,
		Email:          strings.TrimSpace(req.Email),
		Address:        strings.TrimSpace(req.Address),
		DistanceKm:     co.DistanceKm,
		SelectedOption: req.Option,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  models.PaymentPending,
		Subtotal:       co.Breakdown.Subtotal,
		DeliveryCost:   co.Breakdown.Delivery,
		PackagingCost:  co.Breakdown.Packaging,
		DiscountAmount: co.Breakdown.Discount,
		TotalPrice:     co.Breakdown.Total,
		Status:         models.StatusPending,
		Notes:          strings.TrimSpace(req.Notes),
		Items:          co.Items,
	}
	if co.Discount.Code != nil {
		order.PromoCode = co.Discount.Code.Code
	}

	err = config.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if code := co.Discount.Code; code != nil {
			if err := claimCode(tx, code, order.Phone); err != nil {
				return err
			}
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if code := co.Discount.Code; code != nil {
			redemption := models.DiscountRedemption{CodeID: code.ID, OrderID: order.ID, Phone: order.Phone}
			if err := tx.Create(&redemption).Error; err != nil {
				return err
			}
		}
		history := models.OrderStatusHistory{
			OrderID:  order.ID,
			ToStatus: models.StatusPending,
			Note:     "Order placed by customer",
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(string(order.SelectedOption), string(order.PaymentMethod)).Inc()
	metrics.OrderValue.Observe(order.TotalPrice.InexactFloat64())
	if co.Discount.Code != nil {
		source := "code"
		if co.Discount.Auto {
			source = "auto"
		}
		metrics.DiscountsApplied.WithLabelValues(source).Inc()
	}
	log.WithFields(log.Fields{
		"order":  order.Number,
		"option": order.SelectedOption,
		"total":  order.TotalPrice.StringFixed(2),
		"items":  len(order.Items),
	}).Info("Order placed")
	return &order, co, nil
}

// claimCode takes one use of code inside the placement transaction. The
// counter update comes first so the per-customer count below is read under
// the write lock and concurrent checkouts cannot both pass it.
func claimCode(tx *gorm.DB, code *models.DiscountCode, phone string) error {
	res := tx.Model(&models.DiscountCode{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", code.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return discountError(discount.ErrExhausted)
	}
	if code.PerUserMaxUses > 0 && redemptionCounter(tx, phone)(code.ID) >= code.PerUserMaxUses {
		return discountError(discount.ErrUserLimit)
	}
	return nil
}

// TrackOrder returns an order by its public number with normalized items (public)
func TrackOrder(c *gin.Context) {
	var order models.Order
	if err := config.DB.
		Preload("Items").
		Preload("StatusHistory").
		Where("number = ?", c.Param("number")).
		First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":           order,
		"items":           normalizeItems(order.Items),
		"minutes_elapsed": int(time.Since(order.CreatedAt).Minutes()),
	})
}

type CancelOrderRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// CancelOrder lets the customer cancel an order nobody has accepted yet (public)
func CancelOrder(c *gin.Context) {
	var req CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := config.DB.Where("number = ?", c.Param("number")).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if strings.TrimSpace(req.Phone) != order.Phone {
		c.JSON(http.StatusForbidden, gin.H{"error": "Phone number does not match this order"})
		return
	}

	if err := statemachine.CanTransition(order.Status, models.StatusCancelled, statemachine.ActorCustomer); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         "Cannot cancel order",
			"reason":        err.Error(),
			"current_state": order.Status,
		})
		return
	}

	if err := changeStatus(&order, models.StatusCancelled, 0, "Order cancelled by customer"); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully", "number": order.Number})
}

// changeStatus moves order to status and records the history entry
func changeStatus(order *models.Order, to models.OrderStatus, changedBy uint, note string) error {
	prev := order.Status
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, prev).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return newAPIError(http.StatusConflict, "Order status changed concurrently, reload and retry")
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: prev,
			ToStatus:   to,
			ChangedBy:  changedBy,
			Note:       note,
		}).Error
	})
	if err != nil {
		return err
	}
	order.Status = to
	metrics.OrderStatusChanges.WithLabelValues(string(to)).Inc()
	log.WithFields(log.Fields{
		"order": order.Number,
		"from":  prev,
		"to":    to,
		"by":    changedBy,
	}).Info("Order status changed")
	return nil
}
