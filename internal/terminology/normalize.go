package terminology

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeQuery folds compatibility forms, strips diacritics and collapses
// whitespace, so "  Crohn’s   diséase " and "Crohn’s disease" search alike.
func NormalizeQuery(q string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, q)
	if err != nil {
		folded = q
	}
	return strings.Join(strings.Fields(folded), " ")
}
