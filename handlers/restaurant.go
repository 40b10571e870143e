package handlers

import (
	"errors"
	"net/http"
	"strings"

	"burger-ordering-api/catalog"
	"burger-ordering-api/config"
	"burger-ordering-api/models"
	"burger-ordering-api/money"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Name         string                 `json:"name" binding:"required"`
	Description  string                 `json:"description"`
	Category     models.ProductCategory `json:"category" binding:"required"`
	Price        interface{}            `json:"price" binding:"required"`
	Available    *bool                  `json:"available"`
	DisplayOrder int                    `json:"display_order"`
	ImageURL     string                 `json:"image_url"`
}

// coercePrice returns the coerced price or false when it is not a valid amount
func coercePrice(v interface{}) (decimal.Decimal, bool) {
	p := money.Coerce(v, decimal.NewFromInt(-1))
	return p, !p.IsNegative()
}

func (r *ProductRequest) apply(p *models.Product) error {
	if !r.Category.Valid() {
		return newAPIError(http.StatusBadRequest, "Invalid category. Must be: burger, fries, drink, side, or dessert")
	}
	price, ok := coercePrice(r.Price)
	if !ok {
		return newAPIError(http.StatusBadRequest, "Invalid price")
	}
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.Category = r.Category
	p.Price = price
	p.DisplayOrder = r.DisplayOrder
	p.ImageURL = r.ImageURL
	if r.Available != nil {
		p.Available = *r.Available
	}
	return nil
}

// AdminListProducts returns every product including unavailable ones (admin, staff)
func AdminListProducts(c *gin.Context) {
	var products []models.Product
	config.DB.Order("display_order asc, id asc").Find(&products)
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// AdminCreateProduct adds a product to the menu (admin)
func AdminCreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	product := models.Product{Available: true}
	if err := req.apply(&product); err != nil {
		respondError(c, err)
		return
	}

	available := product.Available
	if err := config.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	if !available {
		product.Available = false
		config.DB.Model(&product).Update("available", false)
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
}

// AdminUpdateProduct replaces a product's fields (admin)
func AdminUpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var product models.Product
	if err := config.DB.First(&product, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.apply(&product); err != nil {
		respondError(c, err)
		return
	}
	if err := config.DB.Save(&product).Error; err != nil {
		respondError(c, err)
		return
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

// AdminDeleteProduct removes a product; placed orders keep their copy (admin)
func AdminDeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := config.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// toggleAvailability shows the new availability in the menu immediately and
// persists it; the menu change is rolled back when the write fails
func toggleAvailability(c *gin.Context, model interface{}, stage func(uint, bool) (*catalog.Change, error), what string) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	available := *req.Available

	change, err := stage(id, available)
	if err != nil && !errors.Is(err, catalog.ErrNotInMenu) {
		respondError(c, err)
		return
	}

	res := config.DB.Model(model).Where("id = ?", id).Update("available", available)
	if res.Error == nil && res.RowsAffected == 0 {
		res.Error = gorm.ErrRecordNotFound
	}
	if res.Error != nil {
		if change != nil {
			change.Rollback()
		}
		if isNotFound(res.Error) {
			c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
			return
		}
		log.WithError(res.Error).WithField("id", id).Error("Availability update failed, menu change rolled back")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update availability"})
		return
	}

	if change != nil {
		change.Commit()
	} else {
		refreshMenu(c.Request.Context())
	}
	c.JSON(http.StatusOK, gin.H{"message": what + " availability updated", "id": id, "available": available})
}

// SetProductAvailability toggles a product in and out of the menu (admin, staff)
func SetProductAvailability(c *gin.Context) {
	toggleAvailability(c, &models.Product{}, svc.Menu.StageProduct, "Product")
}

// SetAddonAvailability toggles an addon in and out of the menu (admin, staff)
func SetAddonAvailability(c *gin.Context) {
	toggleAvailability(c, &models.Addon{}, svc.Menu.StageAddon, "Addon")
}

type AddonRequest struct {
	Name         string               `json:"name" binding:"required"`
	Price        interface{}          `json:"price" binding:"required"`
	Category     models.AddonCategory `json:"category"`
	Available    *bool                `json:"available"`
	DisplayOrder int                  `json:"display_order"`
}

func (r *AddonRequest) apply(a *models.Addon) error {
	if r.Category == "" {
		r.Category = models.AddonRegular
	}
	if !r.Category.Valid() {
		return newAPIError(http.StatusBadRequest, "Invalid category. Must be: regular, sauce, or premium")
	}
	price, ok := coercePrice(r.Price)
	if !ok {
		return newAPIError(http.StatusBadRequest, "Invalid price")
	}
	a.Name = strings.TrimSpace(r.Name)
	a.Price = price
	a.Category = r.Category
	a.DisplayOrder = r.DisplayOrder
	if r.Available != nil {
		a.Available = *r.Available
	}
	return nil
}

// AdminListAddons returns every addon including unavailable ones (admin, staff)
func AdminListAddons(c *gin.Context) {
	var addons []models.Addon
	config.DB.Order("display_order asc, id asc").Find(&addons)
	c.JSON(http.StatusOK, gin.H{"count": len(addons), "addons": addons})
}

// AdminCreateAddon adds an addon (admin)
func AdminCreateAddon(c *gin.Context) {
	var req AddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	addon := models.Addon{Available: true}
	if err := req.apply(&addon); err != nil {
		respondError(c, err)
		return
	}

	var existing models.Addon
	if err := config.DB.Where("LOWER(name) = LOWER(?)", addon.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Addon '" + existing.Name + "' already exists"})
		return
	}
	available := addon.Available
	if err := config.DB.Create(&addon).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create addon"})
		return
	}
	if !available {
		addon.Available = false
		config.DB.Model(&addon).Update("available", false)
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusCreated, gin.H{"message": "Addon created", "addon": addon})
}

// AdminUpdateAddon replaces an addon's fields; placed orders keep their prices (admin)
func AdminUpdateAddon(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var addon models.Addon
	if err := config.DB.First(&addon, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Addon not found"})
		return
	}
	var req AddonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.apply(&addon); err != nil {
		respondError(c, err)
		return
	}
	if err := config.DB.Save(&addon).Error; err != nil {
		respondError(c, err)
		return
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Addon updated", "addon": addon})
}

// AdminDeleteAddon removes an addon (admin)
func AdminDeleteAddon(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	res := config.DB.Delete(&models.Addon{}, id)
	if res.Error != nil {
		respondError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Addon not found"})
		return
	}
	refreshMenu(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Addon deleted"})
}
