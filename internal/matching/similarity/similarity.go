// Package similarity implements the string-similarity primitives:
// Jaro-Winkler, normalized Levenshtein, and nickname equivalence. These are
// the only string-distance functions field scorers are allowed to call.
package similarity

import (
	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

const (
	jaroWinklerBoostThreshold = 0.7
	jaroWinklerPrefixSize     = 4
)

// JaroWinkler scores in [0,1] with prefix scaling factor 0.1 and maximum
// common-prefix length 4.
func JaroWinkler(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, jaroWinklerBoostThreshold, jaroWinklerPrefixSize)
}

// NormalizedLevenshtein returns 1 − edit_distance/max(len(a),len(b)).
// Empty/empty returns 1; empty/non-empty returns 0.
func NormalizedLevenshtein(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}
	return 1 - float64(dist)/float64(maxLen)
}

// Max returns the greater of JaroWinkler and NormalizedLevenshtein for the
// pair, the combination the field scorers use throughout.
func Max(a, b string) float64 {
	jw := JaroWinkler(a, b)
	lev := NormalizedLevenshtein(a, b)
	if jw > lev {
		return jw
	}
	return lev
}
