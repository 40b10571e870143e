package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"burger-ordering-api/cart"
	"burger-ordering-api/catalog"
	"burger-ordering-api/models"
	"burger-ordering-api/pricing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// cartView prices the cart against the current menu
func cartView(ct cart.Cart) gin.H {
	snap := svc.Menu.Snapshot()
	prices := snap.Pricer()

	lines := make([]gin.H, 0, len(ct.Lines))
	totals := make([]decimal.Decimal, 0, len(ct.Lines))
	for _, l := range ct.Lines {
		item := pricing.Item{
			Name:           l.Name,
			Category:       models.ProductCategory(l.Category),
			UnitPrice:      l.UnitPrice,
			Quantity:       l.Quantity,
			Addons:         l.Addons,
			ExtraMeatCount: l.ExtraMeatCount,
		}
		total := svc.Rules.LineTotal(item, prices)
		totals = append(totals, total)
		lines = append(lines, gin.H{"key": l.Key, "line_total": total})
	}

	return gin.H{
		"cart":      ct,
		"lines":     lines,
		"breakdown": svc.Rules.OrderTotal(pricing.Totals{Lines: totals, Option: ct.Option}),
	}
}

func cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, cart.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
	case errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, cart.ErrUnknownAction), errors.Is(err, cart.ErrInvalidValue):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

// CreateCart starts an empty cart (public)
func CreateCart(c *gin.Context) {
	c.JSON(http.StatusCreated, cartView(svc.Carts.Create()))
}

// GetCart returns a cart with current prices (public)
func GetCart(c *gin.Context) {
	ct, err := svc.Carts.Get(c.Param("id"))
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(ct))
}

// fillLine completes an AddLine from the menu; the client only names the product
func fillLine(snap *catalog.Snapshot, a cart.AddLine) (cart.AddLine, error) {
	p, ok := snap.Product(a.Line.ProductID)
	if !ok {
		return a, newAPIError(http.StatusNotFound, "Product not found")
	}
	if !p.Available {
		return a, newAPIError(http.StatusUnprocessableEntity, "Product '"+p.Name+"' is not available")
	}
	if a.Line.Key == "" {
		a.Line.Key = uuid.NewString()
	}
	a.Line.Name = p.Name
	a.Line.Category = string(p.Category)
	a.Line.UnitPrice = p.Price
	return a, nil
}

// DispatchCartAction applies one action to a cart (public)
func DispatchCartAction(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	action, err := cart.DecodeAction(body)
	if err != nil {
		cartError(c, err)
		return
	}
	if add, ok := action.(cart.AddLine); ok {
		if action, err = fillLine(svc.Menu.Snapshot(), add); err != nil {
			respondError(c, err)
			return
		}
	}

	ct, err := svc.Carts.Dispatch(c.Param("id"), action)
	if err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(ct))
}

// DeleteCart drops a cart (public)
func DeleteCart(c *gin.Context) {
	if _, err := svc.Carts.Get(c.Param("id")); err != nil {
		cartError(c, err)
		return
	}
	svc.Carts.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Cart deleted"})
}

type CartCheckoutRequest struct {
	CustomerName  string               `json:"customer_name" binding:"required"`
	Phone         string               `json:"phone" binding:"required"`
	Email         string               `json:"email"`
	Address       string               `json:"address"`
	DistanceKm    *float64             `json:"distance_km"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	PromoCode     string               `json:"promo_code"`
	Notes         string               `json:"notes"`
}

// CheckoutCart places an order from the cart's lines and resets the cart (public)
func CheckoutCart(c *gin.Context) {
	id := c.Param("id")
	ct, err := svc.Carts.Get(id)
	if err != nil {
		cartError(c, err)
		return
	}
	if len(ct.Lines) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cart is empty"})
		return
	}
	var body CartCheckoutRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req := CheckoutRequest{
		CustomerName:  body.CustomerName,
		Phone:         body.Phone,
		Email:         body.Email,
		Address:       body.Address,
		DistanceKm:    body.DistanceKm,
		Option:        ct.Option,
		PaymentMethod: body.PaymentMethod,
		PromoCode:     body.PromoCode,
		Notes:         body.Notes,
	}
	for _, l := range ct.Lines {
		addons, _ := json.Marshal(l.Addons)
		attrs, _ := json.Marshal(l.Attributes)
		req.Items = append(req.Items, OrderLineRequest{
			ProductID:      l.ProductID,
			Quantity:       l.Quantity,
			Addons:         addons,
			Attributes:     attrs,
			ExtraMeatCount: l.ExtraMeatCount,
			Note:           l.Note,
		})
	}

	order, co, err := createOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := svc.Carts.Dispatch(id, cart.Reset{}); err != nil {
		cartError(c, err)
		return
	}
	if _, err := svc.Carts.Dispatch(id, cart.SetStep{Step: cart.StepDone}); err != nil {
		cartError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placedResponse(order, co))
}
