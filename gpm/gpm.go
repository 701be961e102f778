// gpm defines the Generative Probabilistic Model contract the engine
// executes against. A GPM is an opaque external collaborator (there is no
// analog to transport or sampling code in cdb, which only ever reads rows
// out of a B-tree); the engine treats every GPM the same way it treats a
// query input — a boundary the evaluator calls across and never looks
// inside of. Package-level sentinel errors follow cdb's
// planner/errors.go convention of exported `errors.New` values rather than
// ad-hoc fmt.Errorf strings at call sites.
package gpm

import (
	"errors"

	"github.com/inferenceql/iqlgo/value"
)

// ErrProviderFailure marks an error returned by a GPM implementation.
// Provider failures propagate to the caller unchanged in content. The env
// package's logpdf builtin wraps a Logpdf error in this sentinel, so callers
// can recognize it with errors.Is; a Simulate error from a generated table,
// and any error passed through a ConstrainedGPM, is returned as the
// provider returned it, without this sentinel.
var ErrProviderFailure = errors.New("gpm: provider failure")

// GPM is the contract a generative probabilistic model provider exposes.
// Implementations must be pure with respect to the engine: the engine
// caches nothing, calling Logpdf once for every row a density/probability
// clause is evaluated against and Simulate once for every row a generated
// table yields.
type GPM interface {
	// Logpdf returns the log density of targets given constraints. Keys of
	// targets and constraints are GPM variable symbols; values are scalar.
	Logpdf(targets, constraints map[value.Symbol]value.Value) (float64, error)
	// Simulate draws a row binding every symbol in targets, conditioned on
	// constraints.
	Simulate(targets map[value.Symbol]bool, constraints map[value.Symbol]value.Value) (value.Row, error)
}
