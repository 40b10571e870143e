package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus represents the back-office lifecycle of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// FulfillmentOption is how the customer receives the order
type FulfillmentOption string

const (
	OptionLocal    FulfillmentOption = "local"
	OptionTakeaway FulfillmentOption = "takeaway"
	OptionDelivery FulfillmentOption = "delivery"
)

func (o FulfillmentOption) Valid() bool {
	return o == OptionLocal || o == OptionTakeaway || o == OptionDelivery
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTerminal PaymentMethod = "terminal"
	PaymentOnline   PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentTerminal || m == PaymentOnline
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type Order struct {
	ID             uint                 `json:"id" gorm:"primaryKey"`
	Number         string               `json:"number" gorm:"uniqueIndex;not null"`
	CustomerName   string               `json:"customer_name" gorm:"not null"`
	Phone          string               `json:"phone" gorm:"not null;index"`
	Email          string               `json:"email"`
	Address        string               `json:"address"`
	DistanceKm     *float64             `json:"distance_km"`
	SelectedOption FulfillmentOption    `json:"selected_option" gorm:"not null"`
	PaymentMethod  PaymentMethod        `json:"payment_method" gorm:"not null"`
	PaymentStatus  PaymentStatus        `json:"payment_status" gorm:"not null;default:'pending'"`
	Subtotal       decimal.Decimal      `json:"subtotal" gorm:"type:decimal(10,2)"`
	DeliveryCost   decimal.Decimal      `json:"delivery_cost" gorm:"type:decimal(10,2)"`
	PackagingCost  decimal.Decimal      `json:"packaging_cost" gorm:"type:decimal(10,2)"`
	DiscountAmount decimal.Decimal      `json:"discount_amount" gorm:"type:decimal(10,2)"`
	PromoCode      string               `json:"promo_code"`
	TotalPrice     decimal.Decimal      `json:"total_price" gorm:"type:decimal(10,2)"` // computed once at checkout
	Status         OrderStatus          `json:"status" gorm:"not null;default:'pending';index"`
	Notes          string               `json:"notes"`
	Items          []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory  []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// OrderItem snapshots the product and addon prices at the time of order.
// Addons and Attributes hold raw JSON; older rows carry other shapes, read them through extract.
type OrderItem struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	OrderID        uint            `json:"order_id" gorm:"not null;index"`
	ProductID      uint            `json:"product_id"`
	Name           string          `json:"name" gorm:"not null"`
	Category       ProductCategory `json:"category"`
	UnitPrice      decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	Addons         datatypes.JSON  `json:"addons"`
	Attributes     datatypes.JSON  `json:"attributes"`
	ExtraMeatCount int             `json:"extra_meat_count"`
	Note           string          `json:"note"`
	LineTotal      decimal.Decimal `json:"line_total" gorm:"type:decimal(10,2)"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"order_id" gorm:"not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  uint        `json:"changed_by"` // back-office user ID, 0 for the customer
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
