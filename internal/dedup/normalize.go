package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics strips combining marks so "José" and "Jose" normalize equal.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases, folds diacritics, strips punctuation, and
// collapses whitespace so names from different platforms compare cleanly.
func NormalizeName(name string) string {
	folded, _, err := transform.String(foldDiacritics, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteRune(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}

// locationAliases maps common location spellings to a shared token.
var locationAliases = map[string]string{
	"nyc":           "new york",
	"ny":            "new york",
	"sf":            "san francisco",
	"la":            "los angeles",
	"uk":            "united kingdom",
	"usa":           "united states",
	"us":            "united states",
}

// NormalizeLocation lowercases and expands common abbreviations.
func NormalizeLocation(loc string) string {
	n := NormalizeName(loc)
	if alias, ok := locationAliases[n]; ok {
		return alias
	}
	return n
}

// LocationsCompatible reports whether two locations could describe the same
// place. An empty location is compatible with anything: absence of data is
// not evidence of a different person.
func LocationsCompatible(a, b string) bool {
	na, nb := NormalizeLocation(a), NormalizeLocation(b)
	if na == "" || nb == "" {
		return true
	}
	if na == nb {
		return true
	}
	// Token overlap covers "New York" vs "New York, NY" vs "Brooklyn, New York".
	tokens := make(map[string]bool)
	for _, t := range strings.Fields(na) {
		tokens[t] = true
	}
	for _, t := range strings.Fields(nb) {
		if tokens[t] {
			return true
		}
	}
	return false
}
