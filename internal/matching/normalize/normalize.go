// Package normalize implements the pure, idempotent canonicalization
// functions the matching layer compares through. Every function here must
// be symmetric: the same transform is applied to both sides of every
// comparison, and normalize(normalize(x)) == normalize(x).
package normalize

import (
	"regexp"
	"strings"
)

var (
	punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	nonAlnum    = regexp.MustCompile(`[^\p{L}\p{N}]`)
	multiSpace  = regexp.MustCompile(`\s+`)
)

// NameToken lowercases, trims, collapses internal whitespace, and strips
// punctuation from a single name token (given, family, prefix, or suffix).
func NameToken(s string) string {
	s = strings.ToLower(s)
	s = punctuation.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// Postal strips non-alphanumerics and uppercases a postal code.
func Postal(s string) string {
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.ToUpper(s)
}

// streetAbbrevPairs lists both directions of every abbreviation so the
// replacement is symmetric regardless of which form the input used.
var streetAbbrevPairs = []struct{ long, short string }{
	{"street", "st"},
	{"avenue", "ave"},
	{"road", "rd"},
	{"drive", "dr"},
	{"boulevard", "blvd"},
	{"lane", "ln"},
	{"court", "ct"},
	{"circle", "cir"},
}

// Street lowercases, strips punctuation, and canonicalizes street-suffix
// abbreviations to their short form so "Street" and "St" compare equal.
func Street(s string) string {
	s = strings.ToLower(s)
	s = punctuation.ReplaceAllString(s, "")
	s = multiSpace.ReplaceAllString(strings.TrimSpace(s), " ")

	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		for _, pair := range streetAbbrevPairs {
			if tok == pair.long {
				tokens[i] = pair.short
				break
			}
		}
	}
	return strings.Join(tokens, " ")
}

// IdentifierValue strips spaces and dashes and lowercases, preserving all
// other characters verbatim.
func IdentifierValue(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ToLower(s)
}
