package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"mpi-core/internal/domain/patient"
	"mpi-core/internal/mpierrors"
)

func TestValidateAtMostOnePrimaryRequiresExactlyOnePrimaryName(t *testing.T) {
	p := &patient.Patient{Names: []patient.PatientName{{Family: "Doe", IsPrimary: false}}}
	err := validateAtMostOnePrimary(p)
	assert.True(t, mpierrors.Is(err, mpierrors.KindValidationFailed))
}

func TestValidateAtMostOnePrimaryRejectsTwoPrimaryAddresses(t *testing.T) {
	p := &patient.Patient{
		Names: []patient.PatientName{{Family: "Doe", IsPrimary: true}},
		Addresses: []patient.PatientAddress{
			{IsPrimary: true},
			{IsPrimary: true},
		},
	}
	err := validateAtMostOnePrimary(p)
	assert.True(t, mpierrors.Is(err, mpierrors.KindValidationFailed))
}

func TestValidateAtMostOnePrimaryAcceptsWellFormedPatient(t *testing.T) {
	p := &patient.Patient{
		Names:     []patient.PatientName{{Family: "Doe", IsPrimary: true}},
		Addresses: []patient.PatientAddress{{IsPrimary: true}},
		Contacts:  []patient.PatientContact{{IsPrimary: true}},
	}
	assert.NoError(t, validateAtMostOnePrimary(p))
}

func TestValidateLinksRejectsSelfLink(t *testing.T) {
	id := uuid.New()
	p := &patient.Patient{ID: id, Links: []patient.PatientLink{{Other: id, Type: patient.LinkSeeAlso}}}
	err := validateLinks(p)
	assert.True(t, mpierrors.Is(err, mpierrors.KindValidationFailed))
}

func TestValidateLinksRejectsDuplicateOtherType(t *testing.T) {
	other := uuid.New()
	p := &patient.Patient{
		ID: uuid.New(),
		Links: []patient.PatientLink{
			{Other: other, Type: patient.LinkSeeAlso},
			{Other: other, Type: patient.LinkSeeAlso},
		},
	}
	err := validateLinks(p)
	assert.True(t, mpierrors.Is(err, mpierrors.KindValidationFailed))
}

func TestValidateLinksAllowsSameOtherDifferentType(t *testing.T) {
	other := uuid.New()
	p := &patient.Patient{
		ID: uuid.New(),
		Links: []patient.PatientLink{
			{Other: other, Type: patient.LinkSeeAlso},
			{Other: other, Type: patient.LinkRefer},
		},
	}
	assert.NoError(t, validateLinks(p))
}
