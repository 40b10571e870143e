// Package money turns loosely typed price and quantity values into canonical amounts.
package money

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Places is the number of decimal places every currency value is rounded to
const Places = 2

// Round rounds d to currency precision
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Coerce converts v into a non-negative currency value rounded to 2 places.
// Numbers, numeric strings with "," or "." separators (currency symbols and
// whitespace are ignored) and decimals are accepted; anything else yields def.
func Coerce(v any, def decimal.Decimal) decimal.Decimal {
	d, ok := parse(v)
	if !ok || d.IsNegative() {
		return def
	}
	return Round(d)
}

// Quantity converts v into an integer quantity of at least 1, or def.
func Quantity(v any, def int) int {
	d, ok := parse(v)
	if !ok || !d.IsInteger() {
		return def
	}
	n := d.IntPart()
	if n < 1 || n > math.MaxInt32 {
		return def
	}
	return int(n)
}

func parse(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint:
		return decimal.NewFromUint64(uint64(x)), true
	case uint8:
		return decimal.NewFromUint64(uint64(x)), true
	case uint16:
		return decimal.NewFromUint64(uint64(x)), true
	case uint32:
		return decimal.NewFromUint64(uint64(x)), true
	case uint64:
		return decimal.NewFromUint64(x), true
	case json.Number:
		return parseString(string(x))
	case string:
		return parseString(x)
	case []byte:
		return parseString(string(x))
	}
	return decimal.Zero, false
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// parseString keeps digits, separators and a leading minus, then decides which
// separator is the decimal one: the last of "," and "." when both are present.
func parseString(s string) (decimal.Decimal, bool) {
	var b strings.Builder
	suffix := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			if suffix {
				return decimal.Zero, false
			}
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		case unicode.IsSpace(r):
		case unicode.Is(unicode.Sc, r), unicode.IsLetter(r):
			// currency symbols or codes like "zł" may only wrap the number
			if b.Len() > 0 {
				suffix = true
			}
		default:
			return decimal.Zero, false
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, false
	}

	lastComma := strings.LastIndex(cleaned, ",")
	lastDot := strings.LastIndex(cleaned, ".")
	sep := lastDot
	if lastComma > lastDot {
		sep = lastComma
	}
	if sep >= 0 {
		intPart := strings.NewReplacer(",", "", ".", "").Replace(cleaned[:sep])
		frac := cleaned[sep+1:]
		if strings.ContainsAny(frac, ",.") {
			return decimal.Zero, false
		}
		cleaned = intPart + "." + frac
		if strings.HasSuffix(cleaned, ".") {
			cleaned += "0"
		}
	}
	if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
