// env defines the runtime environment the evaluator and clause compiler
// resolve symbols against: builtin functions, named tables, named models,
// and the two distinguished defaults `data` and `model` (spec.md §3
// "Environment").
//
// cdb has no single analog — its planner/plan.go threads a *catalog.Catalog
// through constructors instead of a first-class environment value, because
// cdb's symbol space (table and column names) is closed and schema-backed.
// This module's symbol space also holds runtime values (relations, GPMs,
// comparators), so it follows the plain `map[Symbol]Value` idiom instead,
// generalizing cdb's "pass the catalog explicitly, never reach for a
// global" discipline to a config struct carried alongside the map.
package env

import (
	"fmt"
	"math"

	"github.com/inferenceql/iqlgo/gpm"
	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/value"
)

// Env is a symbol table: builtins, named tables, named models, and the
// `data`/`model` defaults all live in the same map.
type Env map[value.Symbol]value.Value

// Config carries the "global-ish defaults" spec.md §9 names: the default
// table and model symbols read by the planner. Passed explicitly rather
// than held in a package-level mutable global.
type Config struct {
	DefaultTable value.Symbol
	DefaultModel value.Symbol
}

// DefaultConfig returns the engine's process-wide defaults.
func DefaultConfig() Config {
	return Config{DefaultTable: "data", DefaultModel: "model"}
}

// Builtins returns the fixed set of builtin functions every environment
// carries: the comparator/equality predicates, `not=`, `exp`, `merge`, and
// `logpdf` (spec.md §3's "built-in functions"; the `pull` primitive is
// implemented directly as an ir.PullClause rather than a Func, see ir.go).
func Builtins() Env {
	e := Env{}
	for op, pred := range value.Predicates {
		p := pred
		e[value.Symbol(op)] = ir.Func(func(args []value.Value) (value.Value, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("%s: expected 2 args, got %d", op, len(args))
			}
			return p(args[0], args[1]), nil
		})
	}
	e["not="] = ir.Func(func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("not=: expected 2 args, got %d", len(args))
		}
		return !value.Equal(args[0], args[1]), nil
	})
	e["exp"] = ir.Func(func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("exp: expected 1 arg, got %d", len(args))
		}
		f, ok := asFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("exp: argument %v is not numeric", args[0])
		}
		return math.Exp(f), nil
	})
	e["merge"] = ir.Func(func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("merge: expected 2 args, got %d", len(args))
		}
		a, ok := args[0].(value.Row)
		if !ok {
			return nil, fmt.Errorf("merge: first argument is not a row")
		}
		b, ok := args[1].(value.Row)
		if !ok {
			return nil, fmt.Errorf("merge: second argument is not a row")
		}
		out := a.Clone()
		for k, v := range b {
			out[k] = v
		}
		return out, nil
	})
	e["logpdf"] = ir.Func(func(args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("logpdf: expected 3 args, got %d", len(args))
		}
		g, ok := args[0].(gpm.GPM)
		if !ok {
			return nil, fmt.Errorf("logpdf: first argument is not a model")
		}
		targets, err := toSymbolValueMap(args[1])
		if err != nil {
			return nil, fmt.Errorf("logpdf: targets: %w", err)
		}
		constraints, err := toSymbolValueMap(args[2])
		if err != nil {
			return nil, fmt.Errorf("logpdf: constraints: %w", err)
		}
		f, err := g.Logpdf(targets, constraints)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", gpm.ErrProviderFailure, err)
		}
		return f, nil
	})
	return e
}

// Extend builds the environment for one q() invocation: builtins, plus
// every named table and named model the caller supplied (spec.md §4.8).
func Extend(tables map[value.Symbol]*value.Relation, models map[value.Symbol]gpm.GPM) Env {
	e := Builtins()
	for k, v := range tables {
		e[k] = v
	}
	for k, v := range models {
		e[k] = v
	}
	return e
}

func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// toSymbolValueMap adapts a value.Row to the map<sym,val> shape the GPM
// contract (spec.md §6) uses for targets/constraints, dropping any
// NO_VALUE-bound attribute (spec.md §4.4's event-dropping rule applies
// equally here: a GPM is never asked about an absent cell).
func toSymbolValueMap(v value.Value) (map[value.Symbol]value.Value, error) {
	row, ok := v.(value.Row)
	if !ok {
		return nil, fmt.Errorf("expected a row, got %T", v)
	}
	out := make(map[value.Symbol]value.Value, len(row))
	for k, vv := range row {
		if value.IsNoValue(vv) {
			continue
		}
		out[k] = vv
	}
	return out, nil
}
