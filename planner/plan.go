// planner assembles a parsed select_expr into an ir.Plan the executor can
// run: it compiles the from/select/where sub-trees into Fragments, merges
// them, lifts any builtin function reference embedded as a constant into
// an explicit `in` parameter (spec.md §4.7 "input lifting"), and closes
// every or_join's bound-variable list over its subclauses' free variables
// (spec.md §4.5.2).
package planner

import (
	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/env"
	"github.com/inferenceql/iqlgo/ierr"
	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/value"
)

// Compiled is everything the executor needs beyond the raw ir.Plan:
// spec.md §4.7 splits datasource construction out of planning (the row
// database is built from Source only after the validator has run and any
// LIMIT is known), and the post-processing transducer pipeline (spec.md
// §4.7's ordering/limiting/placeholder-stripping steps) reads OrderBy,
// Limit and Adding straight off the parse tree rather than through the IR.
type Compiled struct {
	Plan ir.Plan
	// Source is the relation the from_clause named, not yet tagged into a
	// row database. Plan.Inputs[0] is left nil; the executor must replace
	// it with the tagged rows built from Source (via package db) before
	// calling ir.Run.
	Source *value.Relation
	// Adding is the column name an ADDING clause asked to append to Source
	// before the row database is built, or "" if none was written.
	Adding value.Symbol
	// OrderByColumn/OrderByCmp describe an ORDER BY clause, or the zero
	// value/nil if none was written.
	OrderByColumn value.Symbol
	OrderByCmp    value.Comparator
	// Limit is the row cap an explicit LIMIT clause named, or -1 if none
	// was written (spec.md §4.3: a LIMIT is mandatory when Source is lazy).
	Limit int
	// Lazy reports whether Source is backed by an unbounded generated-table
	// stream, for the executor to decide how much to materialize.
	Lazy bool
}

// Compile compiles a select_expr node into a Compiled plan.
func Compile(n *compiler.Node, e env.Env, cfg env.Config) (*Compiled, error) {
	c := &ctx{env: e, cfg: cfg}

	source, err := compileSource(n.Get(compiler.TagFromClause), c)
	if err != nil {
		return nil, err
	}

	sl := n.Get(compiler.TagSelectList)
	if sl == nil {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "select_expr missing select_list: %s", compiler.Unparse(n))
	}
	selFrag, err := compileSelectClause(sl, c)
	if err != nil {
		return nil, err
	}

	base := Fragment{Where: []ir.Clause{entityEnumeration()}}
	frags := []Fragment{base, selFrag}
	if wc := n.Get(compiler.TagWhereClause); wc != nil {
		whereFrag, err := compileWhereClause(wc, c)
		if err != nil {
			return nil, err
		}
		frags = append(frags, whereFrag)
	}

	merged := Merge(frags...)
	merged = inputize(merged, c)
	merged.Where = rewriteOrJoins(merged.Where)

	query := ir.Query{
		Find:  merged.Find,
		Keys:  merged.Keys,
		In:    append([]ir.Var{ir.DB}, merged.In...),
		Where: merged.Where,
	}
	inputs := make([]value.Value, len(query.In))
	for i, v := range query.In {
		if v == ir.DB {
			continue
		}
		inputs[i] = merged.Inputs[v]
	}

	orderCol, orderCmp, err := compileOrderBy(n.Get(compiler.TagOrderByClause), c)
	if err != nil {
		return nil, err
	}
	limit := -1
	if lc := n.Get(compiler.TagLimitClause); lc != nil {
		limit, err = readLimit(lc)
		if err != nil {
			return nil, err
		}
	}
	adding := value.Symbol("")
	if ac := n.Get(compiler.TagAddingClause); ac != nil {
		if nameNode := ac.Get(compiler.TagName); nameNode != nil {
			s, _ := nameNode.OnlyLeaf()
			adding = value.Symbol(s)
		}
	}

	return &Compiled{
		Plan:          ir.Plan{Query: query, Inputs: inputs},
		Source:        source,
		Adding:        adding,
		OrderByColumn: orderCol,
		OrderByCmp:    orderCmp,
		Limit:         limit,
		Lazy:          source.IsLazy(),
	}, nil
}

func compileOrderBy(ob *compiler.Node, c *ctx) (value.Symbol, value.Comparator, error) {
	if ob == nil {
		return "", nil, nil
	}
	nameNode := ob.Get(compiler.TagName)
	if nameNode == nil {
		return "", nil, ierr.Newf(ierr.KindClauseCompilation, "order_by_clause missing name: %s", compiler.Unparse(ob))
	}
	name, _ := nameNode.OnlyLeaf()
	cmp := value.Comparator(value.Ascending)
	if ob.Get(compiler.TagDescending) != nil {
		cmp = value.Descending
	}
	return value.Symbol(name), cmp, nil
}

func readLimit(lc *compiler.Node) (int, error) {
	natNode := lc.Get(compiler.TagNat)
	if natNode == nil {
		return 0, ierr.Newf(ierr.KindClauseCompilation, "limit_clause missing count: %s", compiler.Unparse(lc))
	}
	v, err := compiler.ReadLiteral(natNode)
	if err != nil {
		return 0, err
	}
	n, _ := v.(int64)
	return int(n), nil
}

// inputize lifts every builtin Func referenced as a constant Term (the
// clause compiler's builtinTerm helper always produces one of these) into
// a fresh `in` variable, so the IR's Query.In/Plan.Inputs contract — "every
// value a query depends on beyond the row database arrives as a named
// input" — holds even for the comparators and GPM-facing builtins the
// where/select compilers reference by constant (spec.md §4.7). A lifted
// variable is named with an "?in" prefix rather than ir.GeneratedPrefix, so
// rewriteOrJoins adds it to the bound list of any or_join that calls it.
func inputize(f Fragment, c *ctx) Fragment {
	if f.Inputs == nil {
		f.Inputs = map[ir.Var]value.Value{}
	}
	f.Where = inputizeClauses(f.Where, &f, c)
	return f
}

func inputizeClauses(clauses []ir.Clause, f *Fragment, c *ctx) []ir.Clause {
	out := make([]ir.Clause, len(clauses))
	for i, cl := range clauses {
		out[i] = inputizeClause(cl, f, c)
	}
	return out
}

func inputizeClause(cl ir.Clause, f *Fragment, c *ctx) ir.Clause {
	switch v := cl.(type) {
	case ir.PredicateClause:
		v.Fn = liftFunc(v.Fn, f, c)
		return v
	case ir.OrJoinClause:
		for i, sub := range v.Subclauses {
			v.Subclauses[i] = inputizeClauses(sub, f, c)
		}
		return v
	default:
		return cl
	}
}

func liftFunc(t ir.Term, f *Fragment, c *ctx) ir.Term {
	if t.IsVar {
		return t
	}
	if _, ok := t.Const.(ir.Func); !ok {
		return t
	}
	v := ir.Var("?in" + string(c.gensym()[len(ir.GeneratedPrefix):]))
	f.In = append(f.In, v)
	f.Inputs[v] = t.Const
	return ir.VarTerm(v)
}
