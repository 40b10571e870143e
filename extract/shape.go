// Package extract normalizes the item representations that accumulated in order
// history (strings, lists, flag maps, nested option records) into canonical
// addon selections and attribute pairs.
package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"burger-ordering-api/money"
)

// Selection is one chosen addon with its quantity
type Selection struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// Attribute is a product option such as meat type or doneness
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Shape is one decoded variant of a raw item representation.
// The concrete types below are the only implementations.
type Shape interface {
	walk(c *collector)
}

type (
	// Empty is anything that could not be recognized
	Empty struct{}
	// Text is a plain string, possibly a comma separated list of entries
	Text struct{ Parts []string }
	// List is an array of shapes
	List []Shape
	// Named is an object carrying a name and an optional quantity
	Named Selection
	// Pair is an explicit key/value attribute
	Pair Attribute
	// Flags is an object whose truthy keys are addon names
	Flags struct {
		Selected []Selection
		Pairs    []Attribute
	}
	// Container is an item record with nested addon and option fields
	Container struct {
		Pairs    []Attribute
		Children []Shape
	}
)

const maxDepth = 8

var (
	nameKeys      = []string{"name", "title", "label"}
	qtyKeys       = []string{"qty", "quantity", "amount", "count"}
	selectionKeys = []string{"selected", "checked", "enabled", "active"}
	containerKey  = regexp.MustCompile(`^(addons?|extras?|options|attributes|selectedaddons|dodatki|modifiers)$`)
	separators    = regexp.MustCompile(`[,;|\n]+`)

	// item-level fields that are never addon flags
	reservedKeys = map[string]bool{
		"id": true, "productid": true, "price": true, "unitprice": true, "total": true,
		"qty": true, "quantity": true, "amount": true, "count": true, "category": true,
		"note": true, "notes": true, "extrameat": true, "extrameatcount": true,
		"selected": true, "checked": true, "enabled": true, "active": true,
	}
)

// Decode classifies raw into a Shape. []byte, json.RawMessage and strings
// holding JSON are unmarshalled first.
func Decode(raw any) Shape {
	return decode(raw, 0)
}

func decode(raw any, depth int) Shape {
	if depth > maxDepth {
		return Empty{}
	}
	switch v := raw.(type) {
	case nil:
		return Empty{}
	case Shape:
		return v
	case json.RawMessage:
		return decodeJSON(v, depth)
	case []byte:
		return decodeJSON(v, depth)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return Empty{}
		}
		// JSON-looking text is JSON or nothing, never an addon name
		if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, `"`) {
			return decodeJSON([]byte(trimmed), depth)
		}
		return Text{Parts: splitText(trimmed)}
	case []string:
		list := make(List, 0, len(v))
		for _, s := range v {
			list = append(list, decode(s, depth+1))
		}
		return list
	case []Selection:
		list := make(List, 0, len(v))
		for _, s := range v {
			list = append(list, Named(s))
		}
		return list
	case []Attribute:
		list := make(List, 0, len(v))
		for _, a := range v {
			list = append(list, Pair(a))
		}
		return list
	case []any:
		list := make(List, 0, len(v))
		for _, e := range v {
			list = append(list, decode(e, depth+1))
		}
		return list
	case map[string]any:
		return decodeObject(v, depth)
	case json.Marshaler:
		// stored JSON column types
		data, err := v.MarshalJSON()
		if err != nil {
			return Empty{}
		}
		return decodeJSON(data, depth)
	}
	return Empty{}
}

func decodeJSON(data []byte, depth int) Shape {
	if len(bytes.TrimSpace(data)) == 0 {
		return Empty{}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Empty{}
	}
	return decode(v, depth+1)
}

func decodeObject(obj map[string]any, depth int) Shape {
	if len(obj) == 0 {
		return Empty{}
	}
	byKey := make(map[string]string, len(obj))
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
		byKey[compactKey(k)] = k
	}
	sort.Strings(keys)

	lookup := func(candidates []string) (any, bool) {
		for _, c := range candidates {
			if k, ok := byKey[c]; ok {
				return obj[k], true
			}
		}
		return nil, false
	}

	// {key, value}
	if k, ok := lookup([]string{"key"}); ok {
		if v, ok := lookup([]string{"value"}); ok {
			return Pair{Key: scalarString(k), Value: scalarString(v)}
		}
	}

	var children []Shape
	for _, k := range keys {
		if containerKey.MatchString(compactKey(k)) {
			children = append(children, decode(obj[k], depth+1))
		}
	}
	if len(children) > 0 {
		return Container{Pairs: stringPairs(obj, keys), Children: children}
	}

	if n, ok := lookup(nameKeys); ok {
		name, isString := n.(string)
		name = strings.TrimSpace(name)
		if !isString || name == "" {
			return Empty{}
		}
		if v, ok := lookup([]string{"value"}); ok {
			if _, allowed := attributeKey(name); allowed {
				return Pair{Key: name, Value: scalarString(v)}
			}
		}
		if sel, ok := lookup(selectionKeys); ok && !truthy(sel) {
			return Empty{}
		}
		qty := 1
		if q, ok := lookup(qtyKeys); ok {
			qty = money.Quantity(q, 1)
		}
		return Named{Name: name, Qty: qty}
	}

	flags := Flags{Pairs: stringPairs(obj, keys)}
	for _, k := range keys {
		if _, isAttr := attributeKey(k); isAttr || reservedKeys[compactKey(k)] {
			continue
		}
		if qty := flagQuantity(obj[k]); qty > 0 {
			flags.Selected = append(flags.Selected, Selection{Name: strings.TrimSpace(k), Qty: qty})
		}
	}
	if len(flags.Selected) == 0 && len(flags.Pairs) == 0 {
		return Empty{}
	}
	return flags
}

// stringPairs picks allow-listed attribute keys carrying scalar values
func stringPairs(obj map[string]any, keys []string) []Attribute {
	var pairs []Attribute
	for _, k := range keys {
		if _, ok := attributeKey(k); !ok {
			continue
		}
		switch v := obj[k].(type) {
		case string, json.Number, float64:
			if s := scalarString(v); s != "" {
				pairs = append(pairs, Attribute{Key: k, Value: s})
			}
		}
	}
	return pairs
}

func flagQuantity(v any) int {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "1", "true", "yes", "tak", "on":
			return 1
		}
	case json.Number, float64, int:
		if money.Quantity(x, 0) == 1 {
			return 1
		}
	}
	return 0
}

func truthy(v any) bool {
	return flagQuantity(v) > 0
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return fmt.Sprintf("%g", x)
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	return ""
}

func compactKey(k string) string {
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(Fold(k))
}

func splitText(s string) []string {
	var parts []string
	for _, p := range separators.Split(s, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
