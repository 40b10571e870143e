package pricing

import (
	"burger-ordering-api/extract"
	"burger-ordering-api/models"

	"github.com/shopspring/decimal"
)

// AddonInfo is what line pricing needs to know about an addon
type AddonInfo struct {
	Name     string               `json:"name" yaml:"name"`
	Price    decimal.Decimal      `json:"price" yaml:"price"`
	Category models.AddonCategory `json:"category" yaml:"category"`
}

// Pricer resolves an addon name to its price
type Pricer interface {
	Lookup(name string) (AddonInfo, bool)
}

// DefaultAddons prices addons that are missing from the live table
var DefaultAddons = []AddonInfo{
	{Name: "Ser", Price: decimal.NewFromInt(3), Category: models.AddonRegular},
	{Name: "Bekon", Price: decimal.NewFromInt(4), Category: models.AddonRegular},
	{Name: "Jalapeño", Price: decimal.NewFromInt(3), Category: models.AddonRegular},
	{Name: "Cebula", Price: decimal.NewFromInt(2), Category: models.AddonRegular},
	{Name: "Cebula prażona", Price: decimal.NewFromInt(3), Category: models.AddonRegular},
	{Name: "Pieczarki", Price: decimal.NewFromInt(3), Category: models.AddonRegular},
	{Name: "Jajko", Price: decimal.NewFromInt(3), Category: models.AddonRegular},
	{Name: "Sos czosnkowy", Price: decimal.NewFromInt(2), Category: models.AddonSauce},
	{Name: "Sos BBQ", Price: decimal.NewFromInt(2), Category: models.AddonSauce},
	{Name: "Ketchup", Price: decimal.NewFromInt(2), Category: models.AddonSauce},
	{Name: "Majonez", Price: decimal.NewFromInt(2), Category: models.AddonSauce},
	{Name: "Sos serowy", Price: decimal.NewFromInt(5), Category: models.AddonPremium},
}

// Table looks up live addons first and falls back to a default table.
// Names match case- and diacritic-insensitively.
type Table struct {
	live     map[string]AddonInfo
	fallback map[string]AddonInfo
}

func NewTable(live []models.Addon, fallback []AddonInfo) *Table {
	t := &Table{
		live:     make(map[string]AddonInfo, len(live)),
		fallback: make(map[string]AddonInfo, len(fallback)),
	}
	for _, a := range live {
		t.live[extract.Fold(a.Name)] = AddonInfo{Name: a.Name, Price: a.Price, Category: a.Category}
	}
	for _, a := range fallback {
		t.fallback[extract.Fold(a.Name)] = a
	}
	return t
}

func (t *Table) Lookup(name string) (AddonInfo, bool) {
	key := extract.Fold(name)
	if a, ok := t.live[key]; ok {
		return a, true
	}
	if a, ok := t.fallback[key]; ok {
		return a, true
	}
	return AddonInfo{Name: name, Category: models.AddonRegular}, false
}
