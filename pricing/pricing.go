// Package pricing computes line and order totals from normalized order items.
package pricing

import (
	"strings"

	"burger-ordering-api/extract"
	"burger-ordering-api/models"
	"burger-ordering-api/money"

	"github.com/shopspring/decimal"
)

// Rules holds the house surcharges
type Rules struct {
	ExtraMeatPrice decimal.Decimal `yaml:"extra_meat_price"`
	DepositAmount  decimal.Decimal `yaml:"deposit_amount"`
	PackagingCost  decimal.Decimal `yaml:"packaging_cost"`
}

func DefaultRules() Rules {
	return Rules{
		ExtraMeatPrice: decimal.NewFromInt(15),
		DepositAmount:  decimal.RequireFromString("0.50"),
		PackagingCost:  decimal.NewFromInt(2),
	}
}

// Item is one order line as priced
type Item struct {
	Name           string
	Category       models.ProductCategory
	UnitPrice      decimal.Decimal
	Quantity       int
	Addons         []extract.Selection
	ExtraMeatCount int
}

// Eligible reports whether an addon may be attached to a product.
// Burgers take everything; fries take sauces plus the premium cheese sauce,
// unless the fries already come with cheese; everything else takes nothing.
func Eligible(category models.ProductCategory, productName string, addon AddonInfo) bool {
	switch category {
	case models.CategoryBurger:
		return true
	case models.CategoryFries:
		switch addon.Category {
		case models.AddonSauce:
			return true
		case models.AddonPremium:
			return !impliesCheese(productName)
		}
	}
	return false
}

// EligibleAddons filters addons down to the ones a product accepts
func EligibleAddons(category models.ProductCategory, productName string, addons []models.Addon) []models.Addon {
	out := []models.Addon{}
	for _, a := range addons {
		if Eligible(category, productName, AddonInfo{Name: a.Name, Price: a.Price, Category: a.Category}) {
			out = append(out, a)
		}
	}
	return out
}

func impliesCheese(name string) bool {
	n := extract.Fold(name)
	for _, w := range []string{"cheese", "ser", "cheddar"} {
		if strings.Contains(n, w) {
			return true
		}
	}
	return false
}

// DepositEligible is true for bottled or canned drinks other than water
func DepositEligible(category models.ProductCategory, name string) bool {
	if category != models.CategoryDrink {
		return false
	}
	n := extract.Fold(name)
	return !strings.Contains(n, "woda") && !strings.Contains(n, "water")
}

// AddonsCost is the per-unit cost of the eligible addons on item
func AddonsCost(item Item, prices Pricer) decimal.Decimal {
	total := decimal.Zero
	for _, sel := range item.Addons {
		info, _ := prices.Lookup(sel.Name)
		if !Eligible(item.Category, item.Name, info) {
			continue
		}
		qty := sel.Qty
		if qty < 1 {
			qty = 1
		}
		total = total.Add(info.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// LineTotal is (unit + addons + extra meat) * quantity, plus the drink deposit per unit
func (r Rules) LineTotal(item Item, prices Pricer) decimal.Decimal {
	qty := decimal.NewFromInt(int64(max(item.Quantity, 1)))
	extraMeat := r.ExtraMeatPrice.Mul(decimal.NewFromInt(int64(max(item.ExtraMeatCount, 0))))

	unit := item.UnitPrice.Add(AddonsCost(item, prices)).Add(extraMeat)
	total := unit.Mul(qty)
	if DepositEligible(item.Category, item.Name) {
		total = total.Add(r.DepositAmount.Mul(qty))
	}
	return money.Round(total)
}

// Packaging returns the packaging fee for the fulfillment option
func (r Rules) Packaging(option models.FulfillmentOption) decimal.Decimal {
	if option == models.OptionTakeaway || option == models.OptionDelivery {
		return r.PackagingCost
	}
	return decimal.Zero
}

// Totals is the input to OrderTotal
type Totals struct {
	Lines    []decimal.Decimal
	Option   models.FulfillmentOption
	Delivery decimal.Decimal
	Discount decimal.Decimal
}

// Breakdown is the priced order
type Breakdown struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Packaging decimal.Decimal `json:"packaging_cost"`
	Delivery  decimal.Decimal `json:"delivery_cost"`
	Discount  decimal.Decimal `json:"discount_amount"`
	Total     decimal.Decimal `json:"total_price"`
}

// Gross is what a percentage discount applies to
func (b Breakdown) Gross() decimal.Decimal {
	return b.Subtotal.Add(b.Packaging).Add(b.Delivery)
}

// WithDiscount returns the breakdown with discount applied, total floored at 0
func (b Breakdown) WithDiscount(discount decimal.Decimal) Breakdown {
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	b.Discount = money.Round(discount)
	total := b.Gross().Sub(b.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	b.Total = money.Round(total)
	return b
}

// OrderTotal sums lines, packaging and delivery and subtracts the discount
func (r Rules) OrderTotal(t Totals) Breakdown {
	b := Breakdown{
		Subtotal:  Subtotal(t.Lines),
		Packaging: r.Packaging(t.Option),
		Delivery:  money.Round(t.Delivery),
	}
	return b.WithDiscount(t.Discount)
}

func Subtotal(lines []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l)
	}
	return money.Round(sum)
}
