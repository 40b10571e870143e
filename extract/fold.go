package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold normalizes a name for comparison: case folded, diacritics removed,
// inner whitespace collapsed. "Jalapeño " and "jalapeno" fold to the same key.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// ł has no decomposition
	out = strings.NewReplacer("ł", "l", "Ł", "L").Replace(out)
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}
