package extract

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAddonsShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want []Selection
	}{
		{"leading qty", "2x Ser", []Selection{{"Ser", 2}}},
		{"times sign", "3 × Bekon", []Selection{{"Bekon", 3}}},
		{"trailing qty", "Jalapeno x2", []Selection{{"Jalapeno", 2}}},
		{"paren qty", "Sos czosnkowy (2)", []Selection{{"Sos czosnkowy", 2}}},
		{"glued trailing qty", "Ketchupx2", []Selection{{"Ketchup", 2}}},
		{"x inside a word", "Box 2", []Selection{{"Box 2", 1}}},
		{"zero qty dropped", "0x Ser, Bekon", []Selection{{"Bekon", 1}}},
		{"zero paren qty dropped", "Ser (0)", []Selection{}},
		{"bare name", "Cebula", []Selection{{"Cebula", 1}}},
		{"csv string", "2x Ser, Bekon", []Selection{{"Ser", 2}, {"Bekon", 1}}},
		{"string array", []any{"Ser", "1x Bekon"}, []Selection{{"Ser", 1}, {"Bekon", 1}}},
		{"object array", []any{
			map[string]any{"name": "Ser", "qty": 2},
			map[string]any{"title": "Bekon", "quantity": "1"},
			map[string]any{"label": "Cebula", "amount": json.Number("3")},
		}, []Selection{{"Ser", 2}, {"Bekon", 1}, {"Cebula", 3}}},
		{"flags", map[string]any{"Ser": true, "Bekon": false, "Cebula": "1", "Jalapeno": 1.0},
			[]Selection{{"Cebula", 1}, {"Jalapeno", 1}, {"Ser", 1}}},
		{"nested options", map[string]any{
			"name":    "Cheeseburger",
			"price":   20,
			"options": map[string]any{"Ser": true},
			"addons":  []any{"Bekon"},
		}, []Selection{{"Bekon", 1}, {"Ser", 1}}},
		{"json string", `[{"name":"Ser","qty":2}]`, []Selection{{"Ser", 2}}},
		{"raw message", json.RawMessage(`{"Bekon":true}`), []Selection{{"Bekon", 1}}},
		{"unselected object", []any{map[string]any{"name": "Ser", "selected": false}}, []Selection{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Addons(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Addons(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestAddonsDegradeToEmpty(t *testing.T) {
	for _, raw := range []any{
		nil, "", 42, true, map[string]any{}, []byte("{broken"), map[string]any{"name": 7},
		"[broken", `{"Ser":2}`, `"unterminated`,
	} {
		got := Addons(raw)
		if got == nil || len(got) != 0 {
			t.Errorf("Addons(%v) = %v, want empty list", raw, got)
		}
	}
}

func TestAddonsAggregateCaseInsensitive(t *testing.T) {
	got := Addons([]any{"ser", "2x SER", map[string]any{"name": "Ser", "qty": 1}})
	want := []Selection{{"ser", 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAddonsFilterBlockedTerms(t *testing.T) {
	got := Addons([]any{"Wołowina", "Medium", "Ser", "średnio wysmażony"})
	want := []Selection{{"Ser", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestEquivalentShapesAgree(t *testing.T) {
	reps := []any{
		"2x Ser",
		[]any{map[string]any{"name": "ser", "qty": 2}},
		"Ser x2",
		[]any{"Ser", "SER"},
		`{"addons":[{"name":"Ser","quantity":2}]}`,
	}
	want := Fold("Ser")
	for _, r := range reps {
		got := Addons(r)
		if len(got) != 1 || Fold(got[0].Name) != want || got[0].Qty != 2 {
			t.Errorf("Addons(%v) = %v, want one Ser x2", r, got)
		}
	}
}

func TestAttributes(t *testing.T) {
	raw := map[string]any{
		"name":      "Cheeseburger",
		"meatType":  "wołowina",
		"addons":    []any{"Ser"},
		"options":   map[string]any{"stopień wysmażenia": "medium", "Sos": "BBQ"},
		"something": "else",
	}
	got := Attributes(raw, "burger")
	want := []Attribute{
		{AttrMeat, "wołowina"},
		{AttrDoneness, "medium"},
		{AttrSauce, "BBQ"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAttributesFromText(t *testing.T) {
	got := Attributes("Mięso: kurczak; ostrość: hot; 2x Ser", "burger")
	want := []Attribute{{AttrMeat, "kurczak"}, {AttrSpiciness, "hot"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAttributesHiddenForNonBurger(t *testing.T) {
	raw := []any{
		map[string]any{"key": "meat", "value": "beef"},
		map[string]any{"key": "size", "value": "large"},
	}
	got := Attributes(raw, "fries")
	want := []Attribute{{AttrSize, "large"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractionIsIdempotentOnOwnOutput(t *testing.T) {
	raw := map[string]any{
		"addons":  []any{"2x Ser", "bekon", "Bekon"},
		"options": map[string]any{"meat": "beef", "doneness": "rare"},
	}
	addons := Addons(raw)
	attrs := Attributes(raw, "burger")

	addonJSON, err := json.Marshal(addons)
	if err != nil {
		t.Fatal(err)
	}
	attrJSON, err := json.Marshal(attrs)
	if err != nil {
		t.Fatal(err)
	}

	if again := Addons(addonJSON); !reflect.DeepEqual(again, addons) {
		t.Errorf("addons round trip: got %v, want %v", again, addons)
	}
	if again := Attributes(attrJSON, "burger"); !reflect.DeepEqual(again, attrs) {
		t.Errorf("attributes round trip: got %v, want %v", again, attrs)
	}
	if again := Addons(string(addonJSON)); !reflect.DeepEqual(again, addons) {
		t.Errorf("addons round trip from string: got %v, want %v", again, addons)
	}
}

func TestDecodeVariants(t *testing.T) {
	if _, ok := Decode(nil).(Empty); !ok {
		t.Error("nil should decode to Empty")
	}
	if _, ok := Decode("2x Ser").(Text); !ok {
		t.Error("string should decode to Text")
	}
	if _, ok := Decode([]any{"Ser"}).(List); !ok {
		t.Error("array should decode to List")
	}
	if _, ok := Decode(map[string]any{"name": "Ser"}).(Named); !ok {
		t.Error("named object should decode to Named")
	}
	if _, ok := Decode(map[string]any{"Ser": true}).(Flags); !ok {
		t.Error("flag object should decode to Flags")
	}
	if _, ok := Decode(map[string]any{"key": "meat", "value": "beef"}).(Pair); !ok {
		t.Error("key/value object should decode to Pair")
	}
	if _, ok := Decode(map[string]any{"options": map[string]any{}}).(Container); !ok {
		t.Error("record with options should decode to Container")
	}
}

func TestFold(t *testing.T) {
	if Fold("  Jalapeño  Extra ") != "jalapeno extra" {
		t.Errorf("unexpected fold: %q", Fold("  Jalapeño  Extra "))
	}
	if Fold("Wołowina") != Fold("wolowina") {
		t.Error("ł should fold to l")
	}
}
