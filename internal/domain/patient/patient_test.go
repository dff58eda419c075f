package patient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mpi-core/internal/domain/patient"
)

func TestParseGenderFallsBackToUnknown(t *testing.T) {
	assert.Equal(t, patient.GenderFemale, patient.ParseGender("female"))
	assert.Equal(t, patient.GenderUnknown, patient.ParseGender("F"))
	assert.Equal(t, patient.GenderUnknown, patient.ParseGender(""))
}

func TestParseLinkTypeRejectsUnknown(t *testing.T) {
	lt, ok := patient.ParseLinkType("replaced_by")
	assert.True(t, ok)
	assert.Equal(t, patient.LinkReplacedBy, lt)

	_, ok = patient.ParseLinkType("friend")
	assert.False(t, ok)
}

func TestPrimaryName(t *testing.T) {
	p := &patient.Patient{Names: []patient.PatientName{
		{Family: "Old", Use: patient.NameUseOld},
		{Family: "Current", Given: []string{"Ana"}, IsPrimary: true},
	}}
	name, ok := p.PrimaryName()
	assert.True(t, ok)
	assert.Equal(t, "Current", name.Family)
}

func TestFullNameRendersPrimaryName(t *testing.T) {
	p := &patient.Patient{Names: []patient.PatientName{
		{Family: "Smith", Given: []string{"John", "Q"}, Prefix: []string{"Dr"}, Suffix: []string{"Jr"}, IsPrimary: true},
	}}
	assert.Equal(t, "Dr John Q Smith Jr", p.FullName())

	none := &patient.Patient{}
	assert.Equal(t, "", none.FullName())
}
