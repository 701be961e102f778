package gpm

import "github.com/inferenceql/iqlgo/value"

// ConstrainedGPM wraps a GPM with a fixed target set T and fixed
// constraints C. Once constructed, T and C are immutable (spec.md §6's
// glossary entry for ConstrainedGPM) — every method below only ever reads
// them, never writes.
type ConstrainedGPM struct {
	inner       GPM
	targets     map[value.Symbol]bool
	constraints map[value.Symbol]value.Value
}

// NewConstrainedGPM builds a ConstrainedGPM over inner with fixed target set
// targets and fixed constraint map constraints. A nil targets means
// unrestricted: every call's own targets pass through untouched. This is
// how `condition` (point conditioning, which restricts nothing) is
// expressed as a ConstrainedGPM with an empty target restriction.
func NewConstrainedGPM(inner GPM, targets map[value.Symbol]bool, constraints map[value.Symbol]value.Value) *ConstrainedGPM {
	return &ConstrainedGPM{inner: inner, targets: targets, constraints: constraints}
}

// Logpdf calls the inner GPM with targets ∩ T and C ∪ constraints, with
// constraints overriding C on key collision (the substitution law in
// spec.md §8 invariant 3: logpdf(G,t,c) = logpdf(M, t∩T, C∪c)).
func (g *ConstrainedGPM) Logpdf(targets, constraints map[value.Symbol]value.Value) (float64, error) {
	innerTargets := intersectValues(targets, g.targets)
	innerConstraints := union(g.constraints, constraints)
	f, err := g.inner.Logpdf(innerTargets, innerConstraints)
	if err != nil {
		return 0, err
	}
	return f, nil
}

// Simulate draws over T ∩ targets with constraints C ∪ constraints
// (constraints overriding C on key collision).
func (g *ConstrainedGPM) Simulate(targets map[value.Symbol]bool, constraints map[value.Symbol]value.Value) (value.Row, error) {
	innerTargets := intersectBool(targets, g.targets)
	innerConstraints := union(g.constraints, constraints)
	row, err := g.inner.Simulate(innerTargets, innerConstraints)
	if err != nil {
		return nil, err
	}
	return row, nil
}

// intersectValues returns the subset of a whose keys are also present (and
// true) in mask. A nil mask means unrestricted: a is returned unchanged.
func intersectValues(a map[value.Symbol]value.Value, mask map[value.Symbol]bool) map[value.Symbol]value.Value {
	if mask == nil {
		return a
	}
	out := make(map[value.Symbol]value.Value, len(a))
	for k, v := range a {
		if mask[k] {
			out[k] = v
		}
	}
	return out
}

// intersectBool returns the subset of a whose keys are also present (and
// true) in b. A nil b means unrestricted: a is returned unchanged.
func intersectBool(a, b map[value.Symbol]bool) map[value.Symbol]bool {
	if b == nil {
		return a
	}
	out := make(map[value.Symbol]bool, len(a))
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

// union merges base and override into a new map, with override's entries
// winning on key collision.
func union(base, override map[value.Symbol]value.Value) map[value.Symbol]value.Value {
	out := make(map[value.Symbol]value.Value, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
