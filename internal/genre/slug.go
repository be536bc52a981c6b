// Package genre holds genre slugs, the default genre list and the aliases
// accepted when filtering by genre.
package genre

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify converts a name to a URL slug, keeping letters and digits of any
// script.
// "Научная литература" -> "научная-литература".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
// "Café Noir" -> "café-noir".
func Slugify(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}
