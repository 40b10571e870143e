package handlers

import (
	"net/http"

	"burger-ordering-api/config"
	"burger-ordering-api/discount"
	"burger-ordering-api/models"
	"burger-ordering-api/money"
	"burger-ordering-api/pricing"
	"burger-ordering-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type menuEntry struct {
	models.Product
	Addons          []models.Addon `json:"addons"`
	ExtraMeat       bool           `json:"extra_meat"`
	DepositEligible bool           `json:"deposit"`
}

// GetMenu returns available products with the addons each one accepts (public)
func GetMenu(c *gin.Context) {
	snap := svc.Menu.Snapshot()
	addons := snap.AvailableAddons()
	category := c.Query("category")

	menu := make([]menuEntry, 0, len(snap.Products))
	for _, p := range snap.Products {
		if !p.Available {
			continue
		}
		if category != "" && string(p.Category) != category {
			continue
		}
		menu = append(menu, menuEntry{
			Product:         p,
			Addons:          pricing.EligibleAddons(p.Category, p.Name, addons),
			ExtraMeat:       p.Category == models.CategoryBurger,
			DepositEligible: pricing.DepositEligible(p.Category, p.Name),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"count":            len(menu),
		"menu":             menu,
		"extra_meat_price": svc.Rules.ExtraMeatPrice,
		"deposit_amount":   svc.Rules.DepositAmount,
		"packaging_cost":   svc.Rules.PackagingCost,
		"loaded_at":        snap.LoadedAt,
	})
}

// ListAddons returns the addons that can be ordered (public)
func ListAddons(c *gin.Context) {
	addons := svc.Menu.Snapshot().AvailableAddons()
	c.JSON(http.StatusOK, gin.H{"count": len(addons), "addons": addons})
}

// ListPromotions returns public and auto-applied codes that are currently usable (public)
func ListPromotions(c *gin.Context) {
	var codes []models.DiscountCode
	config.DB.Where("active = ? AND (is_public = ? OR auto_apply = ?)", true, true, true).
		Order("auto_apply desc, id asc").
		Find(&codes)

	now := svc.Now()
	promos := make([]gin.H, 0, len(codes))
	for _, dc := range codes {
		if dc.StartsAt != nil && now.Before(*dc.StartsAt) {
			continue
		}
		if dc.ExpiresAt != nil && !now.Before(*dc.ExpiresAt) {
			continue
		}
		if dc.MaxUses > 0 && dc.UsedCount >= dc.MaxUses {
			continue
		}
		promos = append(promos, gin.H{
			"code":       dc.Code,
			"type":       dc.Type,
			"value":      dc.Value,
			"min_order":  dc.MinOrder,
			"auto_apply": dc.AutoApply,
			"expires_at": dc.ExpiresAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(promos), "promotions": promos})
}

type ValidateDiscountRequest struct {
	Code     string      `json:"code" binding:"required"`
	Subtotal interface{} `json:"subtotal"`
	Phone    string      `json:"phone"`
}

// ValidateDiscount checks a code against a subtotal before checkout (public)
func ValidateDiscount(c *gin.Context) {
	var req ValidateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	subtotal := money.Coerce(req.Subtotal, decimal.Zero)

	var dc models.DiscountCode
	if err := config.DB.Where("code = ?", discount.Normalize(req.Code)).First(&dc).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": discount.ErrNotFound.Error()})
		return
	}
	if err := discount.Check(dc, subtotal, svc.Now(), redemptionCounter(config.DB, req.Phone)(dc.ID)); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "code": dc.Code, "reason": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"code":      dc.Code,
		"type":      dc.Type,
		"value":     dc.Value,
		"min_order": dc.MinOrder,
		"amount":    discount.Amount(dc, subtotal),
	})
}

// GetStateMachineInfo returns the order lifecycle for clients and docs
func GetStateMachineInfo(c *gin.Context) {
	var terminal []string
	for _, s := range []models.OrderStatus{models.StatusPending, models.StatusAccepted, models.StatusCompleted, models.StatusCancelled} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, string(s))
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"description":     "Burger order lifecycle",
	})
}
