package blocking

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"mpi-core/internal/domain/patient"
)

func TestToDoc(t *testing.T) {
	dob := time.Date(1980, 1, 15, 0, 0, 0, 0, time.UTC)
	postal := "62704"
	city := "Springfield"
	state := "IL"
	p := &patient.Patient{
		ID:        uuid.New(),
		Active:    true,
		Gender:    patient.GenderMale,
		BirthDate: &dob,
		Names:     []patient.PatientName{{Family: "Smith", Given: []string{"John", "Robert"}, IsPrimary: true}},
		Addresses: []patient.PatientAddress{{PostalCode: &postal, City: &city, State: &state, IsPrimary: true}},
		Identifiers: []patient.PatientIdentifier{
			{Type: patient.IdentifierMRN, System: "sys1", Value: "MRN001"},
		},
	}

	d := toDoc(p)
	if d.Family != "Smith" {
		t.Fatalf("family = %q", d.Family)
	}
	if d.Given != "John Robert" {
		t.Fatalf("given = %q", d.Given)
	}
	if d.BirthYear != 1980 {
		t.Fatalf("birth year = %d", d.BirthYear)
	}
	if d.PostalCode != postal {
		t.Fatalf("postal = %q", d.PostalCode)
	}
	if d.Identifiers != "MRN:MRN001" {
		t.Fatalf("identifiers = %q", d.Identifiers)
	}
	if !d.Active {
		t.Fatal("expected active true")
	}
}

func TestToDocTombstonedIsInactive(t *testing.T) {
	now := time.Now()
	p := &patient.Patient{
		ID:        uuid.New(),
		Active:    true,
		Gender:    patient.GenderUnknown,
		DeletedAt: &now,
		Names:     []patient.PatientName{{Family: "Doe", IsPrimary: true}},
	}
	d := toDoc(p)
	if d.Active {
		t.Fatal("tombstoned patient must index as inactive")
	}
}
