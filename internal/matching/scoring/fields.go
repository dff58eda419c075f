// Package scoring implements the per-field and composite scorers over a
// pair of patient aggregates. All field scorers are pure functions
// returning [0,1], with no blocking calls.
package scoring

import (
	"strings"
	"time"

	"mpi-core/internal/domain/patient"
	"mpi-core/internal/matching/normalize"
	"mpi-core/internal/matching/similarity"
)

// FamilyName scores two already-rendered family names.
func FamilyName(a, b string) float64 {
	na, nb := normalize.NameToken(a), normalize.NameToken(b)
	if na == nb {
		return 1.0
	}
	return similarity.Max(na, nb)
}

// GivenName compares the first given token on each side.
func GivenName(a, b []string) float64 {
	ta, oka := firstToken(a)
	tb, okb := firstToken(b)
	if !oka || !okb {
		return 0.0
	}
	na, nb := normalize.NameToken(ta), normalize.NameToken(tb)
	if na == nb {
		return 1.0
	}
	if similarity.NicknameEquivalent(na, nb) {
		return 0.95
	}
	return similarity.Max(na, nb)
}

func firstToken(tokens []string) (string, bool) {
	for _, t := range tokens {
		if strings.TrimSpace(t) != "" {
			return t, true
		}
	}
	return "", false
}

// NameComposite combines family, given, and prefix/suffix scores per the
// 0.50/0.40/0.10 weighting.
func NameComposite(a, b patient.PatientName) float64 {
	family := FamilyName(a.Family, b.Family)
	given := GivenName(a.Given, b.Given)
	return 0.50*family + 0.40*given + 0.10*prefixSuffix(a, b)
}

// prefixSuffix returns the maximum pairwise similarity across all
// prefix/suffix token combinations, or 0.0 if either side contributes none.
func prefixSuffix(a, b patient.PatientName) float64 {
	aTokens := append(append([]string{}, a.Prefix...), a.Suffix...)
	bTokens := append(append([]string{}, b.Prefix...), b.Suffix...)
	if len(aTokens) == 0 || len(bTokens) == 0 {
		return 0.0
	}
	best := 0.0
	for _, at := range aTokens {
		na := normalize.NameToken(at)
		for _, bt := range bTokens {
			nb := normalize.NameToken(bt)
			if s := similarity.Max(na, nb); s > best {
				best = s
			}
		}
	}
	return best
}

// dobParts is the (year, month, day) decomposition used by DateOfBirth.
type dobParts struct {
	year, month, day int
}

func toParts(t time.Time) dobParts {
	t = t.UTC()
	return dobParts{year: t.Year(), month: int(t.Month()), day: t.Day()}
}

// DateOfBirth applies graduated tolerance rules for common data-entry
// errors, evaluated in a fixed order; the first matching rule wins.
func DateOfBirth(a, b *time.Time) float64 {
	if a == nil && b == nil {
		return 0.5
	}
	if a == nil || b == nil {
		return 0.0
	}
	pa, pb := toParts(*a), toParts(*b)

	if pa == pb {
		return 1.0
	}
	if pa.year == pb.year && pa.month == pb.month {
		diff := pa.day - pb.day
		if diff < 0 {
			diff = -diff
		}
		if diff == 1 || diff == 2 {
			return 0.95
		}
	}
	if pa.year == pb.year && pa.month == pb.day && pa.day == pb.month {
		return 0.90
	}
	if pa.year == pb.year && pa.month == pb.month {
		diff := pa.day - pb.day
		if diff < 0 {
			diff = -diff
		}
		if diff >= 3 {
			return 0.80
		}
	}
	yearDiff := pa.year - pb.year
	if yearDiff < 0 {
		yearDiff = -yearDiff
	}
	if yearDiff == 1 && pa.month == pb.month && pa.day == pb.day {
		return 0.85
	}
	if pa.year == pb.year {
		return 0.50
	}
	return 0.00
}

// Gender scores administrative-gender equality. Equality is checked before
// the unknown rule, so unknown/unknown counts as agreement.
func Gender(a, b patient.Gender) float64 {
	if a == b {
		return 1.0
	}
	if a == patient.GenderUnknown || b == patient.GenderUnknown {
		return 0.5
	}
	return 0.0
}

// Address returns the maximum pairwise address score across all
// (A-address, B-address) combinations, or 0.0 if either side is empty.
func Address(a, b []patient.PatientAddress) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	best := 0.0
	for _, aa := range a {
		for _, bb := range b {
			if s := addressPair(aa, bb); s > best {
				best = s
			}
		}
	}
	return best
}

func addressPair(a, b patient.PatientAddress) float64 {
	return 0.30*postalScore(deref(a.PostalCode), deref(b.PostalCode)) +
		0.20*similarity.Max(normalize.NameToken(deref(a.City)), normalize.NameToken(deref(b.City))) +
		0.20*stateScore(deref(a.State), deref(b.State)) +
		0.30*similarity.Max(normalize.Street(deref(a.Line1)), normalize.Street(deref(b.Line1)))
}

func postalScore(a, b string) float64 {
	na, nb := normalize.Postal(a), normalize.Postal(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}
	if len(na) >= 5 && len(nb) >= 5 && na[:5] == nb[:5] {
		return 0.95
	}
	if len(na) >= 3 && len(nb) >= 3 && na[:3] == nb[:3] {
		return 0.70
	}
	return 0.0
}

func stateScore(a, b string) float64 {
	na := strings.ToUpper(normalize.NameToken(a))
	nb := strings.ToUpper(normalize.NameToken(b))
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}
	return 0.0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Identifier returns the maximum pairwise score across all identifier
// combinations, or 0.0 if either side is empty.
func Identifier(a, b []patient.PatientIdentifier) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	best := 0.0
	for _, ai := range a {
		for _, bi := range b {
			if s := identifierPair(ai, bi); s > best {
				best = s
			}
		}
	}
	return best
}

func identifierPair(a, b patient.PatientIdentifier) float64 {
	if a.Type != b.Type || a.System != b.System {
		return 0.0
	}
	if a.Value == b.Value {
		return 1.0
	}
	if normalize.IdentifierValue(a.Value) == normalize.IdentifierValue(b.Value) {
		return 0.98
	}
	return 0.0
}
