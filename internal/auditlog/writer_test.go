package auditlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapDefaultsToFiveHundred(t *testing.T) {
	w := New(nil, 0)
	assert.Equal(t, 500, w.cap(0))
	assert.Equal(t, 500, w.cap(-1))
	assert.Equal(t, 500, w.cap(10_000))
	assert.Equal(t, 50, w.cap(50))
}

func TestCapHonorsConfiguredCeiling(t *testing.T) {
	w := New(nil, 200)
	assert.Equal(t, 200, w.cap(0))
	assert.Equal(t, 200, w.cap(500))
	assert.Equal(t, 25, w.cap(25))
}
