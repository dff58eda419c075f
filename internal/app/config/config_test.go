package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "probabilistic", cfg.Matching.Strategy)
	assert.Equal(t, 0.85, cfg.Matching.Threshold)
	assert.Equal(t, 0.35, cfg.Matching.Weights.Name)
	assert.Equal(t, 100, cfg.Blocking.ResultCap)
	assert.Equal(t, 2, cfg.Blocking.FuzzyEditDistance)
	assert.Equal(t, 500, cfg.Audit.QueryCap)
}

func TestNewConfigRejectsUnknownStrategy(t *testing.T) {
	t.Setenv("MATCHING_STRATEGY", "ml")
	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfigRejectsWeightsNotSummingToOne(t *testing.T) {
	t.Setenv("MATCHING_WEIGHT_NAME", "0.9")
	_, err := NewConfig()
	assert.Error(t, err)
}

func TestNewConfigOverrides(t *testing.T) {
	t.Setenv("MATCHING_STRATEGY", "deterministic")
	t.Setenv("BLOCKING_RESULT_CAP", "50")
	t.Setenv("AUDIT_QUERY_CAP", "200")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "deterministic", cfg.Matching.Strategy)
	assert.Equal(t, 50, cfg.Blocking.ResultCap)
	assert.Equal(t, 200, cfg.Audit.QueryCap)
}
