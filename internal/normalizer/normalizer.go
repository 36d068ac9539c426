// Package normalizer canonicalizes municipality names for comparison.
// Folded strings are only ever fed to the similarity scorer; stored
// names keep their original spelling.
package normalizer

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold transliterates s to a diacritic-free ASCII representation,
// lower-cases and trims it. Combining marks are stripped first so
// decomposed input folds the same as its precomposed form.
func Fold(s string) string {
	return strings.TrimSpace(strings.ToLower(unidecode.Unidecode(StripDiacritics(s))))
}

// StripDiacritics removes combining marks while keeping the base
// letters, so "Llobregat" survives and "Móstoles" becomes "Mostoles".
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// CollapseSpaces squeezes runs of whitespace into single spaces and
// trims the ends.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
