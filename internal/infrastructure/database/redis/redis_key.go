package redis

import (
	"fmt"
	"strings"
)

// KeyGenerator builds and validates Redis keys for the patient cache,
// following the {domain}_{context}:{identifier} convention.
type KeyGenerator struct{}

func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{}
}

// KeyPattern is one named cache convention with its TTL.
type KeyPattern struct {
	Domain  string
	Context string
	TTL     int // seconds, 0 = no expiration
}

// Patterns are the cache conventions the store actually issues.
var Patterns = map[string]KeyPattern{
	"patient_by_id": {Domain: "mpi", Context: "patient", TTL: 300},
}

// GenerateKey builds "{domain}_{context}:{identifier}" (for patient_by_id:
// "mpi_patient:{id}").
func (g *KeyGenerator) GenerateKey(patternName string, identifier ...string) (string, error) {
	pattern, ok := Patterns[patternName]
	if !ok {
		return "", fmt.Errorf("unknown redis key pattern: %s", patternName)
	}
	prefix := fmt.Sprintf("%s_%s", pattern.Domain, pattern.Context)
	if len(identifier) == 0 {
		return prefix, nil
	}
	return fmt.Sprintf("%s:%s", prefix, strings.Join(identifier, "_")), nil
}

func (g *KeyGenerator) GetTTL(patternName string) (int, error) {
	pattern, ok := Patterns[patternName]
	if !ok {
		return 0, fmt.Errorf("unknown redis key pattern: %s", patternName)
	}
	return pattern.TTL, nil
}
