package stattype

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamedRoundTripsWithName(t *testing.T) {
	for _, name := range []string{"binary", "categorical", "gaussian"} {
		st, ok := Named(name)
		assert.True(t, ok)
		assert.Equal(t, name, Name(st))
	}
}

func TestNamedRejectsUnknownName(t *testing.T) {
	_, ok := Named("nominal")
	assert.False(t, ok)
}

func TestNameOfUnknownConstant(t *testing.T) {
	assert.Equal(t, "unknown", Name(Unknown))
}
