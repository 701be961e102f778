// ir defines the Datalog-style intermediate representation the clause
// compiler emits and the planner merges: a conjunctive query of pattern,
// predicate, ground, get_else, pull and or_join clauses over logic
// variables, plus the minimal evaluator that runs one (spec.md §4.6).
//
// cdb has no analog to a conjunctive-query IR — its planner/plan.go builds
// a tree of logicalNode values that compile straight to vm.Command
// bytecode for a single B-tree cursor. This package plays the same "the
// compiled thing the executor runs" role, generalized from register
// bytecode to a small relational-algebra-over-facts representation, because
// the executor here runs against an in-memory row set rather than a page
// cursor and needs disjunction (or_join) and predicate invocation that a
// bytecode program would otherwise have to hand-unroll.
package ir

import "github.com/inferenceql/iqlgo/value"

// Var names a logic variable, conventionally written with a leading "?"
// (e.g. "?e", "$"). "$" is reserved for the datasource variable bound to
// the row database.
type Var string

// DB is the reserved datasource variable, always Query.In[0].
const DB Var = "$"

// GeneratedPrefix marks a variable as compiler-generated (as opposed to the
// single well-known entity variable every query shares, and the `in`
// variables input lifting introduces). or_join rewriting (spec.md §4.5.2)
// never adds a generated variable to a bound list: free-variable collection
// skips anything carrying this prefix.
const GeneratedPrefix = "?g"

// Func is a builtin callable value: a comparator, exp, merge, or logpdf
// (pull is a PullClause, not a Func). Builtins are ordinary env values (see the env package) until the
// planner's input-lifting pass promotes them into explicit `in` parameters
// (spec.md §4.7 "Input lifting").
type Func func(args []value.Value) (value.Value, error)

// Term is either a bound logic variable or a constant value (which may
// itself be a Func, a GPM handle, or any other runtime value).
type Term struct {
	IsVar bool
	Var   Var
	Const value.Value
}

// VarTerm builds a variable Term.
func VarTerm(v Var) Term { return Term{IsVar: true, Var: v} }

// ConstTerm builds a constant Term.
func ConstTerm(v value.Value) Term { return Term{Const: v} }

// Clause is one conjunct of a Query's Where list. The concrete clause types
// below are the closed set of productions the clause compiler emits and
// the evaluator interprets (spec.md §4.6).
type Clause interface {
	clause()
}

// PatternClause matches `[Entity Attr Value]` against every row in the
// datasource: binds Entity to each row and either tests or binds Value
// against row[Attr].
type PatternClause struct {
	Entity Var
	Attr   value.Symbol
	Value  Term
}

func (PatternClause) clause() {}

// PredicateClause is `[(Fn Args…) Result]`. When Result is empty, the call
// is a pure filter: a binding survives only if Fn(Args...) is a truthy
// bool.
type PredicateClause struct {
	Fn     Term
	Args   []Term
	Result Var
}

func (PredicateClause) clause() {}

// GroundClause binds Result to a constant Term unconditionally.
type GroundClause struct {
	Value  Term
	Result Var
}

func (GroundClause) clause() {}

// GetElseClause binds Result to the Entity row's Attr value, or Default if
// the row has no such attribute.
type GetElseClause struct {
	Entity  Var
	Attr    value.Symbol
	Default Term
	Result  Var
}

func (GetElseClause) clause() {}

// PullClause binds Result to a materialized row projected from Entity: the
// full row when Star is set, else only the named Attrs (missing attrs fill
// with NO_VALUE).
type PullClause struct {
	Star   bool
	Attrs  []value.Symbol
	Entity Var
	Result Var
}

func (PullClause) clause() {}

// OrJoinClause is `(or_join [Bound…] sub1 sub2 …)`: each Subclauses entry is
// evaluated independently against the bindings visible through Bound, and
// the results are unioned back into the outer binding set.
type OrJoinClause struct {
	Bound      []Var
	Subclauses [][]Clause
}

func (OrJoinClause) clause() {}

// Query is the Datalog-like query shape: Find names the result columns
// (logic variables), Keys (if present) labels them positionally, In names
// the positional input variables (In[0] is always DB), and Where is the
// conjunction of clauses.
type Query struct {
	Find  []Var
	Keys  []value.Symbol
	In    []Var
	Where []Clause
}

// Plan pairs a Query with the concrete runtime values bound to its In
// variables. Invariant: len(Query.In) == len(Inputs), and Inputs[0] is
// always the row database.
type Plan struct {
	Query  Query
	Inputs []value.Value
}
