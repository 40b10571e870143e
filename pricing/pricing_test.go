package pricing

import (
	"testing"

	"burger-ordering-api/extract"
	"burger-ordering-api/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testTable() *Table {
	return NewTable([]models.Addon{
		{Name: "Bekon", Price: dec("4"), Category: models.AddonRegular},
		{Name: "Sos czosnkowy", Price: dec("2.50"), Category: models.AddonSauce},
		{Name: "Sos serowy", Price: dec("5"), Category: models.AddonPremium},
	}, DefaultAddons)
}

func TestLineTotalCheeseburger(t *testing.T) {
	item := Item{
		Name:           "Cheeseburger",
		Category:       models.CategoryBurger,
		UnitPrice:      dec("20.00"),
		Quantity:       2,
		Addons:         []extract.Selection{{Name: "Bekon", Qty: 1}},
		ExtraMeatCount: 1,
	}
	got := DefaultRules().LineTotal(item, testTable())
	if !got.Equal(dec("78.00")) {
		t.Errorf("expected 78.00, got %s", got)
	}
}

func TestLineTotalDeposit(t *testing.T) {
	rules := DefaultRules()
	cola := Item{Name: "Coca-Cola 0,5l", Category: models.CategoryDrink, UnitPrice: dec("7"), Quantity: 3}
	if got := rules.LineTotal(cola, testTable()); !got.Equal(dec("22.50")) {
		t.Errorf("cola: expected 22.50, got %s", got)
	}
	water := Item{Name: "Woda niegazowana", Category: models.CategoryDrink, UnitPrice: dec("5"), Quantity: 3}
	if got := rules.LineTotal(water, testTable()); !got.Equal(dec("15")) {
		t.Errorf("water: expected 15, got %s", got)
	}
}

func TestLineTotalEligibility(t *testing.T) {
	rules := DefaultRules()
	table := testTable()
	addons := []extract.Selection{{Name: "Bekon", Qty: 1}, {Name: "sos czosnkowy", Qty: 1}, {Name: "Sos serowy", Qty: 1}}

	fries := Item{Name: "Frytki", Category: models.CategoryFries, UnitPrice: dec("10"), Quantity: 1, Addons: addons}
	if got := rules.LineTotal(fries, table); !got.Equal(dec("17.50")) {
		t.Errorf("fries: expected 17.50 (sauce + premium), got %s", got)
	}

	cheesy := fries
	cheesy.Name = "Frytki z serem"
	if got := rules.LineTotal(cheesy, table); !got.Equal(dec("12.50")) {
		t.Errorf("cheese fries: expected 12.50 (sauce only), got %s", got)
	}

	dessert := Item{Name: "Brownie", Category: models.CategoryDessert, UnitPrice: dec("9"), Quantity: 1, Addons: addons}
	if got := rules.LineTotal(dessert, table); !got.Equal(dec("9")) {
		t.Errorf("dessert: expected 9, got %s", got)
	}
}

func TestLineTotalFallbackPrices(t *testing.T) {
	item := Item{
		Name:      "Classic",
		Category:  models.CategoryBurger,
		UnitPrice: dec("18"),
		Quantity:  1,
		Addons:    []extract.Selection{{Name: "JALAPENO", Qty: 2}, {Name: "Unknown thing", Qty: 1}},
	}
	// Jalapeño comes from the default table, the unknown addon is free
	if got := DefaultRules().LineTotal(item, testTable()); !got.Equal(dec("24")) {
		t.Errorf("expected 24, got %s", got)
	}
}

func TestLineTotalMonotonic(t *testing.T) {
	rules := DefaultRules()
	table := testTable()
	base := Item{Name: "Classic", Category: models.CategoryBurger, UnitPrice: dec("18"), Quantity: 1}
	prev := rules.LineTotal(base, table)
	for i := 0; i < 4; i++ {
		base.Quantity++
		base.ExtraMeatCount++
		base.Addons = append(base.Addons, extract.Selection{Name: "Bekon", Qty: 1})
		cur := rules.LineTotal(base, table)
		if cur.LessThan(prev) {
			t.Fatalf("line total decreased: %s -> %s", prev, cur)
		}
		prev = cur
	}
}

func TestOrderTotal(t *testing.T) {
	rules := DefaultRules()
	b := rules.OrderTotal(Totals{
		Lines:    []decimal.Decimal{dec("78.00")},
		Option:   models.OptionDelivery,
		Delivery: dec("10"),
	})
	if !b.Gross().Equal(dec("90")) {
		t.Fatalf("expected gross 90, got %s", b.Gross())
	}
	// 10% code
	b = b.WithDiscount(b.Gross().Mul(dec("0.10")))
	if !b.Total.Equal(dec("81.00")) {
		t.Errorf("expected total 81.00, got %s", b.Total)
	}
}

func TestOrderTotalPackagingOnlyForTakeawayAndDelivery(t *testing.T) {
	rules := DefaultRules()
	local := rules.OrderTotal(Totals{Lines: []decimal.Decimal{dec("30")}, Option: models.OptionLocal})
	if !local.Packaging.IsZero() || !local.Total.Equal(dec("30")) {
		t.Errorf("local: unexpected %+v", local)
	}
	takeaway := rules.OrderTotal(Totals{Lines: []decimal.Decimal{dec("30")}, Option: models.OptionTakeaway})
	if !takeaway.Total.Equal(dec("32")) {
		t.Errorf("takeaway: expected 32, got %s", takeaway.Total)
	}
}

func TestOrderTotalFloorsAtZero(t *testing.T) {
	b := DefaultRules().OrderTotal(Totals{
		Lines:    []decimal.Decimal{dec("10")},
		Option:   models.OptionLocal,
		Discount: dec("25"),
	})
	if !b.Total.IsZero() {
		t.Errorf("expected 0, got %s", b.Total)
	}
}

func TestEligibleAddons(t *testing.T) {
	addons := []models.Addon{
		{Name: "Ser", Category: models.AddonRegular},
		{Name: "Ketchup", Category: models.AddonSauce},
		{Name: "Sos serowy", Category: models.AddonPremium},
	}
	if n := len(EligibleAddons(models.CategoryBurger, "Classic", addons)); n != 3 {
		t.Errorf("burger: expected 3, got %d", n)
	}
	if n := len(EligibleAddons(models.CategoryFries, "Frytki", addons)); n != 2 {
		t.Errorf("fries: expected 2, got %d", n)
	}
	if n := len(EligibleAddons(models.CategoryFries, "Cheese fries", addons)); n != 1 {
		t.Errorf("cheese fries: expected 1, got %d", n)
	}
	if n := len(EligibleAddons(models.CategoryDrink, "Cola", addons)); n != 0 {
		t.Errorf("drink: expected 0, got %d", n)
	}
}
