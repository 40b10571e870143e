package extract

import (
	"regexp"

	"burger-ordering-api/models"
)

// Canonical attribute keys, in display order
const (
	AttrMeat      = "meat"
	AttrDoneness  = "doneness"
	AttrSize      = "size"
	AttrSauce     = "sauce"
	AttrSpiciness = "spiciness"
)

var attributePatterns = []struct {
	key string
	re  *regexp.Regexp
}{
	{AttrMeat, regexp.MustCompile(`^(meat(type)?|mieso|rodzajmiesa|protein)$`)},
	{AttrDoneness, regexp.MustCompile(`^(doneness|stopienwysmazenia|wysmazenie|cook(ing)?|temperature)$`)},
	{AttrSize, regexp.MustCompile(`^(size|rozmiar|wielkosc)$`)},
	{AttrSauce, regexp.MustCompile(`^(sauce|sos)$`)},
	{AttrSpiciness, regexp.MustCompile(`^(spic(y|e|iness)|ostrosc|ostry|heat)$`)},
}

// burgerOnly attributes are hidden for every other product category
var burgerOnly = map[string]bool{AttrMeat: true, AttrDoneness: true}

func attributeKey(name string) (string, bool) {
	k := compactKey(name)
	for _, p := range attributePatterns {
		if p.re.MatchString(k) {
			return p.key, true
		}
	}
	return "", false
}

// Attributes returns the allow-listed attributes encoded in raw, keyed
// canonically, one value per key (last wins). Meat and doneness are dropped
// unless category is burger; an empty category keeps everything.
func Attributes(raw any, category string) []Attribute {
	c := &collector{}
	Decode(raw).walk(c)

	values := map[string]string{}
	for _, a := range c.attrs {
		key, ok := attributeKey(a.Key)
		if !ok || a.Value == "" {
			continue
		}
		values[key] = a.Value
	}

	out := []Attribute{}
	for _, p := range attributePatterns {
		v, ok := values[p.key]
		if !ok {
			continue
		}
		if burgerOnly[p.key] && category != "" && category != string(models.CategoryBurger) {
			continue
		}
		out = append(out, Attribute{Key: p.key, Value: v})
	}
	return out
}
