package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mpi-core/internal/matching/normalize"
)

func TestNameToken(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "O'Brien", "obrien"},
		{"collapses whitespace", "  Van  Der  Berg ", "van der berg"},
		{"strips punctuation", "Smith-Jones", "smithjones"},
		{"idempotent on already-normal input", "mary", "mary"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalize.NameToken(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, normalize.NameToken(got), "must be idempotent")
		})
	}
}

func TestPostal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips hyphen", "94105-1234", "941051234"},
		{"uppercases UK postcode", "sw1a 1aa", "SW1A1AA"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalize.Postal(tc.in))
		})
	}
}

func TestStreet(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"street vs st", "Main Street", "Main St"},
		{"avenue vs ave", "5th Avenue", "5th Ave"},
		{"boulevard vs blvd", "Sunset Boulevard", "Sunset Blvd"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, normalize.Street(tc.a), normalize.Street(tc.b))
		})
	}
}

func TestIdentifierValue(t *testing.T) {
	assert.Equal(t, "abc123", normalize.IdentifierValue("ABC-123"))
	assert.Equal(t, "abc123", normalize.IdentifierValue("abc 123"))
}
