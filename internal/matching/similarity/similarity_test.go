package similarity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mpi-core/internal/matching/similarity"
)

func TestJaroWinkler(t *testing.T) {
	assert.Equal(t, 1.0, similarity.JaroWinkler("", ""))
	assert.Equal(t, 0.0, similarity.JaroWinkler("martha", ""))
	assert.InDelta(t, 1.0, similarity.JaroWinkler("smith", "smith"), 0.0001)
	assert.Greater(t, similarity.JaroWinkler("martha", "marhta"), 0.9)
}

func TestNormalizedLevenshtein(t *testing.T) {
	assert.Equal(t, 1.0, similarity.NormalizedLevenshtein("", ""))
	assert.Equal(t, 0.0, similarity.NormalizedLevenshtein("abc", ""))
	assert.Equal(t, 1.0, similarity.NormalizedLevenshtein("smith", "smith"))
	assert.InDelta(t, 0.8, similarity.NormalizedLevenshtein("smith", "smyth"), 0.0001)
}

func TestNicknameEquivalent(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"william bill", "william", "bill", true},
		{"william robert", "william", "robert", false},
		{"case insensitive", "WILLIAM", "Billy", true},
		{"catherine katherine cross", "catherine", "katie", true},
		{"unknown name", "zorro", "william", false},
		{"symmetric", "bill", "william", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, similarity.NicknameEquivalent(tc.a, tc.b))
		})
	}
}
