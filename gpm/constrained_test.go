package gpm

import (
	"testing"

	"github.com/inferenceql/iqlgo/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingGPM records the targets/constraints it was last called with so
// tests can assert on the substitution the ConstrainedGPM performed.
type recordingGPM struct {
	lastTargets     map[value.Symbol]bool
	lastConstraints map[value.Symbol]value.Value
	logpdf          float64
	row             value.Row
	err             error
}

func (g *recordingGPM) Logpdf(targets, constraints map[value.Symbol]value.Value) (float64, error) {
	mask := make(map[value.Symbol]bool, len(targets))
	for k := range targets {
		mask[k] = true
	}
	g.lastTargets = mask
	g.lastConstraints = constraints
	return g.logpdf, g.err
}

func (g *recordingGPM) Simulate(targets map[value.Symbol]bool, constraints map[value.Symbol]value.Value) (value.Row, error) {
	g.lastTargets = targets
	g.lastConstraints = constraints
	return g.row, g.err
}

func TestConstrainedGPMLogpdfIntersectsTargets(t *testing.T) {
	inner := &recordingGPM{logpdf: -0.5}
	g := NewConstrainedGPM(inner, map[value.Symbol]bool{"x": true, "y": true}, map[value.Symbol]value.Value{"z": 1})

	_, err := g.Logpdf(map[value.Symbol]value.Value{"x": 1, "w": 2}, map[value.Symbol]value.Value{})
	require.NoError(t, err)

	assert.Equal(t, map[value.Symbol]bool{"x": true}, inner.lastTargets)
	assert.Equal(t, map[value.Symbol]value.Value{"z": 1}, inner.lastConstraints)
}

func TestConstrainedGPMConstraintOverrideWins(t *testing.T) {
	inner := &recordingGPM{logpdf: -1}
	g := NewConstrainedGPM(inner, map[value.Symbol]bool{"x": true}, map[value.Symbol]value.Value{"z": 1})

	_, err := g.Logpdf(map[value.Symbol]value.Value{"x": 1}, map[value.Symbol]value.Value{"z": 2})
	require.NoError(t, err)

	assert.Equal(t, map[value.Symbol]value.Value{"z": 2}, inner.lastConstraints)
}

func TestConstrainedGPMSimulateIntersectsTargets(t *testing.T) {
	inner := &recordingGPM{row: value.Row{"x": 7}}
	g := NewConstrainedGPM(inner, map[value.Symbol]bool{"x": true}, map[value.Symbol]value.Value{})

	row, err := g.Simulate(map[value.Symbol]bool{"x": true, "y": true}, map[value.Symbol]value.Value{})
	require.NoError(t, err)

	assert.Equal(t, map[value.Symbol]bool{"x": true}, inner.lastTargets)
	assert.Equal(t, value.Row{"x": 7}, row)
}

func TestConstrainedGPMPropagatesProviderError(t *testing.T) {
	inner := &recordingGPM{err: ErrProviderFailure}
	g := NewConstrainedGPM(inner, map[value.Symbol]bool{"x": true}, map[value.Symbol]value.Value{})

	_, err := g.Logpdf(map[value.Symbol]value.Value{"x": 1}, map[value.Symbol]value.Value{})
	assert.ErrorIs(t, err, ErrProviderFailure)
}

func TestConstrainedGPMNilTargetsIsUnrestricted(t *testing.T) {
	inner := &recordingGPM{logpdf: -0.5}
	g := NewConstrainedGPM(inner, nil, map[value.Symbol]value.Value{"z": 1})

	_, err := g.Logpdf(map[value.Symbol]value.Value{"x": 1, "w": 2}, map[value.Symbol]value.Value{})
	require.NoError(t, err)

	assert.Equal(t, map[value.Symbol]bool{"x": true, "w": true}, inner.lastTargets)
}
