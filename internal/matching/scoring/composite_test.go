package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mpi-core/internal/domain/patient"
	"mpi-core/internal/matching/scoring"
)

func withPrimaryName(family string, given ...string) patient.PatientName {
	return patient.PatientName{Family: family, Given: given, IsPrimary: true}
}

func TestWeightsValidate(t *testing.T) {
	require.NoError(t, scoring.DefaultWeights().Validate())
	bad := scoring.Weights{Name: 0.5, DOB: 0.5, Gender: 0.5}
	require.Error(t, bad.Validate())
}

func TestProbabilisticNicknameTypoDOB(t *testing.T) {
	scorer, err := scoring.NewProbabilistic(scoring.DefaultWeights(), 0.85)
	require.NoError(t, err)

	dobA := date(1980, 1, 15)
	dobB := date(1980, 1, 16)
	a := &patient.Patient{
		Gender:    patient.GenderMale,
		BirthDate: dobA,
		Names:     []patient.PatientName{withPrimaryName("Smith", "William")},
	}
	b := &patient.Patient{
		Gender:    patient.GenderMale,
		BirthDate: dobB,
		Names:     []patient.PatientName{withPrimaryName("Smith", "Bill")},
	}

	result := scorer.Score(a, b)
	assert.InDelta(t, 0.693, result.Score, 0.001)
	assert.Equal(t, scoring.ClassPossible, result.Classification)
	assert.False(t, result.IsMatch)
}

func TestProbabilisticExactMatchIsDefinite(t *testing.T) {
	scorer, err := scoring.NewProbabilistic(scoring.DefaultWeights(), 0.85)
	require.NoError(t, err)

	dob := date(1975, 5, 20)
	name := withPrimaryName("Garcia", "Maria")
	a := &patient.Patient{Gender: patient.GenderFemale, BirthDate: dob, Names: []patient.PatientName{name}}
	b := &patient.Patient{Gender: patient.GenderFemale, BirthDate: dob, Names: []patient.PatientName{name}}

	result := scorer.Score(a, b)
	assert.Equal(t, scoring.ClassDefinite, result.Classification)
	assert.True(t, result.IsMatch)
}

func TestDeterministicIdentifierShortCircuit(t *testing.T) {
	d := scoring.NewDeterministic()
	ids := []patient.PatientIdentifier{{Type: patient.IdentifierMRN, System: "sys1", Value: "X1"}}
	a := &patient.Patient{Identifiers: ids, Names: []patient.PatientName{withPrimaryName("Doe")}}
	b := &patient.Patient{Identifiers: ids, Names: []patient.PatientName{withPrimaryName("Doeski")}}

	result := d.Score(a, b)
	assert.Equal(t, 1.0, result.Score)
	assert.True(t, result.IsMatch)
}

func TestDeterministicPointCounting(t *testing.T) {
	d := scoring.NewDeterministic()
	dob := date(1990, 3, 3)
	a := &patient.Patient{
		Gender:    patient.GenderMale,
		BirthDate: dob,
		Names:     []patient.PatientName{withPrimaryName("Nguyen", "Tan")},
	}
	b := &patient.Patient{
		Gender:    patient.GenderMale,
		BirthDate: dob,
		Names:     []patient.PatientName{withPrimaryName("Nguyen", "Tan")},
	}
	result := d.Score(a, b)
	// name>=0.90, dob>=0.95, gender==1.00, no addresses on either side -> denominator 3
	assert.InDelta(t, 1.0, result.Score, 0.0001)
	assert.True(t, result.IsMatch)
}

func TestDeterministicAddressWidensDenominator(t *testing.T) {
	d := scoring.NewDeterministic()
	dob := date(1990, 3, 3)
	addr := patient.PatientAddress{Line1: strp("9 Elm St"), City: strp("Dayton"), State: strp("OH"), PostalCode: strp("45402")}
	a := &patient.Patient{
		Gender:    patient.GenderMale,
		BirthDate: dob,
		Names:     []patient.PatientName{withPrimaryName("Nguyen", "Tan")},
		Addresses: []patient.PatientAddress{addr},
	}
	b := &patient.Patient{
		Gender:    patient.GenderMale,
		BirthDate: dob,
		Names:     []patient.PatientName{withPrimaryName("Nguyen", "Tan")},
		Addresses: []patient.PatientAddress{{Line1: strp("1 Oak Ave"), City: strp("Reno"), State: strp("NV"), PostalCode: strp("89501")}},
	}
	result := d.Score(a, b)
	// addresses present but disagreeing: 3 points over denominator 4
	assert.InDelta(t, 0.75, result.Score, 0.0001)
	assert.True(t, result.IsMatch)
}

func TestProbabilisticExactMatchAllFields(t *testing.T) {
	scorer, err := scoring.NewProbabilistic(scoring.DefaultWeights(), 0.85)
	require.NoError(t, err)

	dob := date(1980, 1, 15)
	addr := patient.PatientAddress{Line1: strp("123 Main St"), City: strp("Springfield"), State: strp("IL"), PostalCode: strp("12345")}
	id := patient.PatientIdentifier{Type: patient.IdentifierMRN, System: "sysA", Value: "12345"}
	mk := func() *patient.Patient {
		return &patient.Patient{
			Gender:      patient.GenderMale,
			BirthDate:   dob,
			Names:       []patient.PatientName{withPrimaryName("Smith", "John")},
			Addresses:   []patient.PatientAddress{addr},
			Identifiers: []patient.PatientIdentifier{id},
		}
	}

	result := scorer.Score(mk(), mk())
	assert.Equal(t, scoring.ClassDefinite, result.Classification)
	assert.True(t, result.IsMatch)
	assert.Equal(t, 1.0, result.Breakdown.DOB)
	assert.Equal(t, 1.0, result.Breakdown.Identifier)
	assert.InDelta(t, 1.0, result.Breakdown.Address, 0.0001)
}
