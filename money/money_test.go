package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCoerce(t *testing.T) {
	def := decimal.Zero
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"float", 12.5, "12.5"},
		{"int", 7, "7"},
		{"dot string", "19.99", "19.99"},
		{"comma string", "19,99", "19.99"},
		{"currency suffix", "24,50 zł", "24.5"},
		{"currency prefix", "$ 3.10", "3.1"},
		{"code suffix", "10 PLN", "10"},
		{"thousands comma", "1,234.50", "1234.5"},
		{"thousands dot", "1.234,50", "1234.5"},
		{"thousands space", "1 234,50", "1234.5"},
		{"rounding", "2.345", "2.35"},
		{"json number", json.Number("4.2"), "4.2"},
		{"decimal", decimal.RequireFromString("8.999"), "9"},
		{"trailing separator", "5,", "5"},
		{"leading separator", ",5", "0.5"},
		{"nil", nil, "0"},
		{"empty", "", "0"},
		{"garbage", "abc", "0"},
		{"letters inside", "12abc34", "0"},
		{"negative", "-3", "0"},
		{"nan", math.NaN(), "0"},
		{"inf", math.Inf(1), "0"},
		{"bool", true, "0"},
		{"map", map[string]any{"a": 1}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.in, def)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("Coerce(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestCoerceDefault(t *testing.T) {
	def := decimal.NewFromInt(5)
	if got := Coerce("n/a", def); !got.Equal(def) {
		t.Errorf("expected default %s, got %s", def, got)
	}
}

func TestCoerceSeparatorsAgree(t *testing.T) {
	for _, pair := range [][2]string{
		{"0.1", "0,1"},
		{"12.34", "12,34"},
		{"999.995", "999,995"},
		{"7.0", "7,0"},
	} {
		dot := Coerce(pair[0], decimal.Zero)
		comma := Coerce(pair[1], decimal.Zero)
		if !dot.Equal(comma) {
			t.Errorf("%s -> %s but %s -> %s", pair[0], dot, pair[1], comma)
		}
	}
}

func TestQuantity(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{3, 3},
		{"2", 2},
		{2.0, 2},
		{"1,0", 1},
		{0, 1},
		{-2, 1},
		{2.5, 1},
		{"x", 1},
		{nil, 1},
	}
	for _, tt := range tests {
		if got := Quantity(tt.in, 1); got != tt.want {
			t.Errorf("Quantity(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
