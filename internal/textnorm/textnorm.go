// Package textnorm folds free text into the form used for matching:
// lowercase with diacritics removed.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, decomposes it (NFD) and drops combining marks,
// so "Balón Pequeño" becomes "balon pequeno".
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		// transform only fails on invalid chains; fall back to plain lowercase
		return strings.ToLower(s)
	}
	return folded
}
