// planner generalizes cdb's planner/plan.go: the same "compile each parse
// sub-node to a fragment, then merge the fragments into one plan" shape,
// generalized from register/constant bookkeeping for a single B-tree
// cursor to Datalog IR fragment merging plus input lifting (spec.md
// §4.5-§4.7). Where cdb's QueryPlan walks a fixed statement type (SELECT
// over one table), this planner's clause compiler dispatches on parse-tree
// tag the way the rest of the engine does (spec.md §9).
package planner

import (
	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/value"
)

// Fragment is an IR fragment produced by compiling one SELECT sub-node
// (spec.md §4.5). Find/Keys grow in lockstep (each contributor binds at
// most one result column); In/Inputs are keyed by variable so merging never
// depends on contributors agreeing on position.
type Fragment struct {
	Find   []ir.Var
	Keys   []value.Symbol
	In     []ir.Var
	Inputs map[ir.Var]value.Value
	Where  []ir.Clause
}

// Merge combines fragments in order: set-union on Find/In (first occurrence
// wins position), Inputs keyed by variable, list-concat on Where (spec.md
// §4.5 "Merging uses set-union on find/in/inputs and list-concat on where,
// preserving order").
func Merge(frags ...Fragment) Fragment {
	out := Fragment{Inputs: map[ir.Var]value.Value{}}
	seenFind := map[ir.Var]bool{}
	seenIn := map[ir.Var]bool{}
	for _, f := range frags {
		for _, v := range f.Find {
			if seenFind[v] {
				continue
			}
			seenFind[v] = true
			out.Find = append(out.Find, v)
		}
		out.Keys = append(out.Keys, f.Keys...)
		for _, v := range f.In {
			if seenIn[v] {
				continue
			}
			seenIn[v] = true
			out.In = append(out.In, v)
		}
		for k, v := range f.Inputs {
			out.Inputs[k] = v
		}
		out.Where = append(out.Where, f.Where...)
	}
	return out
}
