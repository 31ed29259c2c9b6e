// Package normalize canonicalizes titles and queries for comparison.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// String reduces s to a lowercase, pure-ASCII, alphanumeric-only form so that
// "Amélie!" and "amelie" compare equal. Every character that is not a letter
// or digit is dropped, accented letters are decomposed (NFKD) and folded to
// their ASCII base letter, and anything without an ASCII base is discarded.
// Total over all inputs and idempotent.
func String(s string) string {
	var kept strings.Builder
	kept.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			kept.WriteRune(r)
		}
	}

	var out strings.Builder
	out.Grow(kept.Len())
	for _, r := range norm.NFKD.String(kept.String()) {
		if r > unicode.MaxASCII {
			// Combining marks and letters with no ASCII base.
			continue
		}
		out.WriteRune(unicode.ToLower(r))
	}
	return out.String()
}
