package extract

import (
	"regexp"
	"strings"

	"burger-ordering-api/money"
)

var (
	leadingQty  = regexp.MustCompile(`(?i)^(\d+)\s*[x×]\s*(.+)$`)
	trailingQty = regexp.MustCompile(`(?i)^(.+?)(?:\s+[x×]\s*|[x×])(\d+)$`)
	parenQty    = regexp.MustCompile(`(?i)^(.+?)\s*\(\s*[x×]?\s*(\d+)\s*\)$`)
	pairText    = regexp.MustCompile(`^([^:=]+?)\s*[:=]\s*(.+)$`)
)

// blocked are meat types and doneness levels. They are attributes, never addons.
var blocked = map[string]bool{}

func init() {
	for _, term := range []string{
		"wołowina", "wolowe", "kurczak", "wege", "vege", "wegetariański", "wegański",
		"beef", "chicken", "veggie", "vegan", "vegetarian", "pulled pork",
		"rare", "medium", "medium rare", "medium well", "well done",
		"krwisty", "krwiste", "średnio", "średnio wysmażony", "wysmażony", "wysmażone",
	} {
		blocked[Fold(term)] = true
	}
}

// IsBlocked reports whether name is a meat-type or doneness label
func IsBlocked(name string) bool {
	return blocked[Fold(name)]
}

type collector struct {
	addons []Selection
	attrs  []Attribute
}

func (Empty) walk(*collector) {}

func (t Text) walk(c *collector) {
	for _, part := range t.Parts {
		if m := pairText.FindStringSubmatch(part); m != nil {
			if _, ok := attributeKey(m[1]); ok {
				c.attrs = append(c.attrs, Attribute{Key: m[1], Value: strings.TrimSpace(m[2])})
				continue
			}
		}
		if sel, ok := parseEntry(part); ok {
			c.addons = append(c.addons, sel)
		}
	}
}

func (l List) walk(c *collector) {
	for _, s := range l {
		s.walk(c)
	}
}

func (n Named) walk(c *collector) {
	qty := n.Qty
	if qty < 1 {
		qty = 1
	}
	c.addons = append(c.addons, Selection{Name: strings.TrimSpace(n.Name), Qty: qty})
}

func (p Pair) walk(c *collector) {
	c.attrs = append(c.attrs, Attribute(p))
}

func (f Flags) walk(c *collector) {
	c.addons = append(c.addons, f.Selected...)
	c.attrs = append(c.attrs, f.Pairs...)
}

func (ct Container) walk(c *collector) {
	c.attrs = append(c.attrs, ct.Pairs...)
	for _, s := range ct.Children {
		s.walk(c)
	}
}

// parseEntry reads "2x Ser", "Ser x2", "Ser (2)" or a bare name.
// An explicit zero quantity drops the entry.
func parseEntry(s string) (Selection, bool) {
	s = strings.TrimSpace(s)
	counted := func(name, qty string) (Selection, bool) {
		n := money.Quantity(qty, 0)
		return Selection{Name: strings.TrimSpace(name), Qty: n}, n > 0
	}
	if m := leadingQty.FindStringSubmatch(s); m != nil {
		return counted(m[2], m[1])
	}
	if m := trailingQty.FindStringSubmatch(s); m != nil {
		return counted(m[1], m[2])
	}
	if m := parenQty.FindStringSubmatch(s); m != nil {
		return counted(m[1], m[2])
	}
	return Selection{Name: s, Qty: 1}, true
}

// Addons returns the canonical addon list encoded in raw. Unrecognized input
// yields an empty list.
func Addons(raw any) []Selection {
	c := &collector{}
	Decode(raw).walk(c)
	return Merge(c.addons)
}

// Merge sums duplicate names case-insensitively, keeping the first spelling
// and order, and drops blanks and blocked terms.
func Merge(in []Selection) []Selection {
	out := []Selection{}
	index := map[string]int{}
	for _, s := range in {
		name := strings.TrimSpace(s.Name)
		if name == "" || IsBlocked(name) {
			continue
		}
		qty := s.Qty
		if qty < 1 {
			qty = 1
		}
		key := Fold(name)
		if i, ok := index[key]; ok {
			out[i].Qty += qty
			continue
		}
		index[key] = len(out)
		out = append(out, Selection{Name: name, Qty: qty})
	}
	return out
}
