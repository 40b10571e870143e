package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"burger-ordering-api/cart"
	"burger-ordering-api/catalog"
	"burger-ordering-api/pricing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DistanceFinder resolves a delivery address to kilometres from the restaurant
type DistanceFinder interface {
	DistanceKm(ctx context.Context, address string) (float64, error)
}

// Notifier delivers customer SMS and broadcast push messages
type Notifier interface {
	SMS(ctx context.Context, phone, text string) error
	Push(ctx context.Context, title, body string) error
}

// Services are the collaborators handlers use next to config.DB
type Services struct {
	Menu     *catalog.Cache
	Carts    *cart.Store
	Geocoder DistanceFinder
	Notifier Notifier
	Rules    pricing.Rules
	Now      func() time.Time
}

var svc Services

// Configure installs the services used by all handlers
func Configure(s Services) {
	if s.Now == nil {
		s.Now = time.Now
	}
	if s.Rules.ExtraMeatPrice.IsZero() && s.Rules.PackagingCost.IsZero() && s.Rules.DepositAmount.IsZero() {
		s.Rules = pricing.DefaultRules()
	}
	svc = s
}

// apiError carries an HTTP status and a JSON body out of shared helpers
type apiError struct {
	Status  int
	Message string
	Details gin.H
}

func (e *apiError) Error() string { return e.Message }

func newAPIError(status int, msg string) *apiError {
	return &apiError{Status: status, Message: msg}
}

// respondError writes err as {"error": ...}; non-API errors become 500s
func respondError(c *gin.Context, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		body := gin.H{"error": ae.Message}
		for k, v := range ae.Details {
			body[k] = v
		}
		c.JSON(ae.Status, body)
		return
	}
	log.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// refreshMenu reloads the menu snapshot after an admin write
func refreshMenu(ctx context.Context) {
	if svc.Menu == nil {
		return
	}
	if err := svc.Menu.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Menu refresh after update failed")
	}
}
