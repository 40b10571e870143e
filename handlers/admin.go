package handlers

import (
	"net/http"
	"strings"
	"time"

	"burger-ordering-api/config"
	"burger-ordering-api/discount"
	"burger-ordering-api/models"
	"burger-ordering-api/money"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type DiscountRequest struct {
	Code           string              `json:"code" binding:"required"`
	Type           models.DiscountType `json:"type" binding:"required"`
	Value          interface{}         `json:"value" binding:"required"`
	MinOrder       interface{}         `json:"min_order"`
	MaxUses        int                 `json:"max_uses" binding:"min=0"`
	PerUserMaxUses int                 `json:"per_user_max_uses" binding:"min=0"`
	StartsAt       *time.Time          `json:"starts_at"`
	ExpiresAt      *time.Time          `json:"expires_at"`
	Active         *bool               `json:"active"`
	IsPublic       bool                `json:"is_public"`
	AutoApply      bool                `json:"auto_apply"`
}

func (r *DiscountRequest) apply(dc *models.DiscountCode) error {
	code := discount.Normalize(r.Code)
	if code == "" || strings.ContainsAny(code, " \t") {
		return newAPIError(http.StatusBadRequest, "Code must be a single word")
	}
	if r.Type != models.DiscountPercent && r.Type != models.DiscountAmount {
		return newAPIError(http.StatusBadRequest, "Invalid type. Must be: percent or amount")
	}
	value := money.Coerce(r.Value, decimal.Zero)
	if value.Sign() <= 0 {
		return newAPIError(http.StatusBadRequest, "Value must be greater than zero")
	}
	if r.Type == models.DiscountPercent && value.GreaterThan(decimal.NewFromInt(100)) {
		return newAPIError(http.StatusBadRequest, "Percent value cannot exceed 100")
	}
	if r.StartsAt != nil && r.ExpiresAt != nil && !r.ExpiresAt.After(*r.StartsAt) {
		return newAPIError(http.StatusBadRequest, "expires_at must be after starts_at")
	}

	dc.Code = code
	dc.Type = r.Type
	dc.Value = value
	dc.MinOrder = money.Coerce(r.MinOrder, decimal.Zero)
	dc.MaxUses = r.MaxUses
	dc.PerUserMaxUses = r.PerUserMaxUses
	dc.StartsAt = r.StartsAt
	dc.ExpiresAt = r.ExpiresAt
	dc.IsPublic = r.IsPublic
	dc.AutoApply = r.AutoApply
	if r.Active != nil {
		dc.Active = *r.Active
	}
	return nil
}

// saveDiscount writes dc; enabling auto-apply clears it on every other code
func saveDiscount(dc *models.DiscountCode) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		var clash int64
		tx.Model(&models.DiscountCode{}).Where("code = ? AND id <> ?", dc.Code, dc.ID).Count(&clash)
		if clash > 0 {
			return newAPIError(http.StatusConflict, "Discount code '"+dc.Code+"' already exists")
		}
		if dc.AutoApply {
			if err := tx.Model(&models.DiscountCode{}).
				Where("auto_apply = ? AND id <> ?", true, dc.ID).
				Update("auto_apply", false).Error; err != nil {
				return err
			}
		}
		if dc.ID == 0 {
			active := dc.Active
			if err := tx.Create(dc).Error; err != nil {
				return err
			}
			if !active {
				dc.Active = false
				return tx.Model(dc).Update("active", false).Error
			}
			return nil
		}
		return tx.Save(dc).Error
	})
}

// AdminListDiscounts returns every discount code (admin, staff)
func AdminListDiscounts(c *gin.Context) {
	var codes []models.DiscountCode
	config.DB.Order("id desc").Find(&codes)
	c.JSON(http.StatusOK, gin.H{"count": len(codes), "discounts": codes})
}

// AdminCreateDiscount adds a discount code (admin)
func AdminCreateDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dc := models.DiscountCode{Active: true}
	if err := req.apply(&dc); err != nil {
		respondError(c, err)
		return
	}
	if err := saveDiscount(&dc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Discount code created", "discount": dc})
}

// AdminUpdateDiscount replaces a discount code's rules; usage counts are kept (admin)
func AdminUpdateDiscount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var dc models.DiscountCode
	if err := config.DB.First(&dc, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Discount code not found"})
		return
	}
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.apply(&dc); err != nil {
		respondError(c, err)
		return
	}
	if err := saveDiscount(&dc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Discount code updated", "discount": dc})
}

// AdminDeleteDiscount removes a discount code (admin)
func AdminDeleteDiscount(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := config.DB.Delete(&models.DiscountCode{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Discount code not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Discount code deleted"})
}

type NotificationRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// SendNotification broadcasts a push message to subscribed customers (admin)
func SendNotification(c *gin.Context) {
	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if svc.Notifier == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Notifications are not configured"})
		return
	}
	if err := svc.Notifier.Push(c.Request.Context(), req.Title, req.Body); err != nil {
		log.WithError(err).Warn("Push broadcast failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send notification", "reason": err.Error()})
		return
	}
	log.WithField("title", req.Title).Info("Push broadcast sent")
	c.JSON(http.StatusOK, gin.H{"message": "Notification sent"})
}
