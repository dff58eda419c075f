package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"mpi-core/internal/domain/patient"
	"mpi-core/internal/matching/scoring"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFamilyName(t *testing.T) {
	assert.Equal(t, 1.0, scoring.FamilyName("Smith", "smith"))
	assert.Greater(t, scoring.FamilyName("Smith", "Smyth"), 0.5)
}

func TestGivenName(t *testing.T) {
	assert.Equal(t, 1.0, scoring.GivenName([]string{"William"}, []string{"william"}))
	assert.Equal(t, 0.95, scoring.GivenName([]string{"William"}, []string{"Bill"}))
	assert.Equal(t, 0.0, scoring.GivenName([]string{"William"}, nil))
}

func TestDateOfBirth(t *testing.T) {
	tests := []struct {
		name string
		a    *time.Time
		b    *time.Time
		want float64
	}{
		{"both absent", nil, nil, 0.5},
		{"one absent", date(1980, 1, 15), nil, 0.0},
		{"equal", date(1980, 1, 15), date(1980, 1, 15), 1.0},
		{"day off by one", date(1980, 1, 15), date(1980, 1, 16), 0.95},
		{"month/day transposition", date(1980, 3, 5), date(1980, 5, 3), 0.90},
		{"same month large day gap", date(1980, 1, 1), date(1980, 1, 20), 0.80},
		{"year off by one same month/day", date(1980, 1, 15), date(1981, 1, 15), 0.85},
		{"same year only", date(1980, 1, 15), date(1980, 6, 20), 0.50},
		{"nothing in common", date(1980, 1, 15), date(1990, 6, 20), 0.00},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, scoring.DateOfBirth(tc.a, tc.b))
		})
	}
}

func TestGender(t *testing.T) {
	assert.Equal(t, 1.0, scoring.Gender(patient.GenderMale, patient.GenderMale))
	assert.Equal(t, 0.0, scoring.Gender(patient.GenderMale, patient.GenderFemale))
	assert.Equal(t, 0.5, scoring.Gender(patient.GenderUnknown, patient.GenderMale))
	assert.Equal(t, 1.0, scoring.Gender(patient.GenderUnknown, patient.GenderUnknown), "equality wins before the unknown rule")
}

func TestNameCompositeEmptyGivenBothSides(t *testing.T) {
	a := patient.PatientName{Family: "Smith"}
	b := patient.PatientName{Family: "Smith"}
	assert.InDelta(t, 0.50, scoring.NameComposite(a, b), 0.0001)
}

func strp(s string) *string { return &s }

func TestAddress(t *testing.T) {
	a := []patient.PatientAddress{{Line1: strp("123 Main Street"), City: strp("Springfield"), State: strp("IL"), PostalCode: strp("62704")}}
	b := []patient.PatientAddress{{Line1: strp("123 Main St"), City: strp("Springfield"), State: strp("IL"), PostalCode: strp("62704")}}
	assert.InDelta(t, 1.0, scoring.Address(a, b), 0.0001)
	assert.Equal(t, 0.0, scoring.Address(nil, b))
}

func TestAddressZipPrefix(t *testing.T) {
	a := []patient.PatientAddress{{Line1: strp("123 Main St"), City: strp("Springfield"), State: strp("IL"), PostalCode: strp("12345")}}
	b := []patient.PatientAddress{{Line1: strp("123 Main St"), City: strp("Springfield"), State: strp("IL"), PostalCode: strp("12389")}}
	// postal drops to the 3-digit-prefix tier: 0.30*0.70 + 0.20 + 0.20 + 0.30
	assert.InDelta(t, 0.91, scoring.Address(a, b), 0.0001)
}

func TestIdentifier(t *testing.T) {
	a := []patient.PatientIdentifier{{Type: patient.IdentifierMRN, System: "sys1", Value: "ABC-123"}}
	b := []patient.PatientIdentifier{{Type: patient.IdentifierMRN, System: "sys1", Value: "abc123"}}
	assert.Equal(t, 0.98, scoring.Identifier(a, b))

	c := []patient.PatientIdentifier{{Type: patient.IdentifierSSN, System: "sys1", Value: "ABC-123"}}
	assert.Equal(t, 0.0, scoring.Identifier(a, c))
}
