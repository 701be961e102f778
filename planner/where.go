package planner

import (
	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/eval"
	"github.com/inferenceql/iqlgo/ierr"
	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/value"
)

// compileWhereClause compiles a where_clause's condition tree to a
// Fragment. or_condition compiles to an or_join over its operands
// (spec.md §4.5.2); and_condition and every base condition contribute
// ordinary conjuncts merged straight into the surrounding Fragment.
func compileWhereClause(wc *compiler.Node, c *ctx) (Fragment, error) {
	cond := wc.OnlyChild()
	if cond == nil {
		return Fragment{}, ierr.Newf(ierr.KindClauseCompilation, "empty where_clause: %s", compiler.Unparse(wc))
	}
	return compileCondition(cond, c)
}

func compileCondition(n *compiler.Node, c *ctx) (Fragment, error) {
	switch n.Tag {
	case compiler.TagOrCondition:
		return compileOrCondition(n, c)
	case compiler.TagAndCondition:
		return compileAndCondition(n, c)
	case compiler.TagPresenceCondition:
		return compilePresenceCondition(n, c)
	case compiler.TagAbsenceCondition:
		return compileAbsenceCondition(n, c)
	case compiler.TagEqualityCondition:
		return compileEqualityCondition(n, c)
	case compiler.TagPredicateCondition:
		return compilePredicateCondition(n, c)
	}
	// A parenthesized condition reduces to its lone child.
	if only := n.OnlyChild(); only != nil {
		return compileCondition(only, c)
	}
	return Fragment{}, ierr.Newf(ierr.KindClauseCompilation, "unrecognized condition %s", n.Tag)
}

func compileAndCondition(n *compiler.Node, c *ctx) (Fragment, error) {
	frags := make([]Fragment, 0, len(n.ChildNodes()))
	for _, ch := range n.ChildNodes() {
		f, err := compileCondition(ch, c)
		if err != nil {
			return Fragment{}, err
		}
		frags = append(frags, f)
	}
	return Merge(frags...), nil
}

// compileOrCondition compiles `a OR b OR ...` to a single OrJoinClause whose
// subclauses are each operand's Where list (spec.md §4.5.2). Bound starts
// as just entityVar; the free-variable closure pass in plan.go extends it
// after the whole select_expr has been compiled, once every clause that
// might reference a variable bound outside the or_join is known.
func compileOrCondition(n *compiler.Node, c *ctx) (Fragment, error) {
	subs := make([][]ir.Clause, 0, len(n.ChildNodes()))
	for _, ch := range n.ChildNodes() {
		f, err := compileCondition(ch, c)
		if err != nil {
			return Fragment{}, err
		}
		subs = append(subs, f.Where)
	}
	return Fragment{Where: []ir.Clause{ir.OrJoinClause{Bound: []ir.Var{entityVar}, Subclauses: subs}}}, nil
}

func compilePresenceCondition(n *compiler.Node, c *ctx) (Fragment, error) {
	attr, err := conditionAttr(n)
	if err != nil {
		return Fragment{}, err
	}
	resultVar := c.gensym()
	notFn, err := builtinTerm(c, "not=")
	if err != nil {
		return Fragment{}, err
	}
	clauses := []ir.Clause{
		ir.GetElseClause{Entity: entityVar, Attr: attr, Default: ir.ConstTerm(value.NO_VALUE), Result: resultVar},
		ir.PredicateClause{Fn: notFn, Args: []ir.Term{ir.VarTerm(resultVar), ir.ConstTerm(value.NO_VALUE)}},
	}
	return Fragment{Where: clauses}, nil
}

func compileAbsenceCondition(n *compiler.Node, c *ctx) (Fragment, error) {
	attr, err := conditionAttr(n)
	if err != nil {
		return Fragment{}, err
	}
	resultVar := c.gensym()
	eqFn, err := builtinTerm(c, "=")
	if err != nil {
		return Fragment{}, err
	}
	clauses := []ir.Clause{
		ir.GetElseClause{Entity: entityVar, Attr: attr, Default: ir.ConstTerm(value.NO_VALUE), Result: resultVar},
		ir.PredicateClause{Fn: eqFn, Args: []ir.Term{ir.VarTerm(resultVar), ir.ConstTerm(value.NO_VALUE)}},
	}
	return Fragment{Where: clauses}, nil
}

func compileEqualityCondition(n *compiler.Node, c *ctx) (Fragment, error) {
	return compileComparison(n, "=", c, false)
}

// compilePredicateCondition compiles a `name OP expr` comparison for any
// operator other than `=`: `<`, `>`, `<=`, `>=`, `<>`, `!=`. spec.md §4.5's
// predicate_condition row emits a `[(not= sym NO_VALUE)]` presence guard
// ahead of the comparison itself, because value.Ascending sorts NO_VALUE
// last and value.Equal treats it as never equal to a present value: without
// the guard, `>`/`>=` would read an absent column as greater than any
// value, and `<>`/`!=` would read it as unequal to any value, both leaking
// absent rows through the filter.
func compilePredicateCondition(n *compiler.Node, c *ctx) (Fragment, error) {
	nameNode := n.Get(compiler.TagName)
	opNode := n.Get(compiler.TagPredicateExpr)
	if nameNode == nil || opNode == nil {
		return Fragment{}, ierr.Newf(ierr.KindClauseCompilation, "malformed predicate_condition: %s", compiler.Unparse(n))
	}
	op, _ := opNode.OnlyLeaf()
	return compileComparison(n, value.Symbol(op), c, true)
}

// compileComparison compiles `name OP expr` to a get_else clause for the
// attribute plus a predicate clause invoking the builtin named by op. When
// guardPresence is set, a `not= NO_VALUE` clause is inserted ahead of the
// comparison so an absent attribute is filtered out rather than compared.
func compileComparison(n *compiler.Node, op value.Symbol, c *ctx, guardPresence bool) (Fragment, error) {
	attr, err := conditionAttr(n)
	if err != nil {
		return Fragment{}, err
	}
	exprNode := lastExprChild(n)
	if exprNode == nil {
		return Fragment{}, ierr.Newf(ierr.KindClauseCompilation, "condition missing comparand: %s", compiler.Unparse(n))
	}
	rhs, err := eval.Eval(exprNode, c.env)
	if err != nil {
		return Fragment{}, err
	}
	attrVar := c.gensym()
	fn, err := builtinTerm(c, op)
	if err != nil {
		return Fragment{}, err
	}
	clauses := []ir.Clause{
		ir.GetElseClause{Entity: entityVar, Attr: attr, Default: ir.ConstTerm(value.NO_VALUE), Result: attrVar},
	}
	if guardPresence {
		notFn, err := builtinTerm(c, "not=")
		if err != nil {
			return Fragment{}, err
		}
		clauses = append(clauses, ir.PredicateClause{Fn: notFn, Args: []ir.Term{ir.VarTerm(attrVar), ir.ConstTerm(value.NO_VALUE)}})
	}
	clauses = append(clauses, ir.PredicateClause{Fn: fn, Args: []ir.Term{ir.VarTerm(attrVar), ir.ConstTerm(rhs)}})
	return Fragment{Where: clauses}, nil
}

func conditionAttr(n *compiler.Node) (value.Symbol, error) {
	nameNode := n.Get(compiler.TagName)
	if nameNode == nil {
		return "", ierr.Newf(ierr.KindClauseCompilation, "condition missing name: %s", compiler.Unparse(n))
	}
	s, _ := nameNode.OnlyLeaf()
	return value.Symbol(s), nil
}

// lastExprChild returns a condition's comparand node: the child node that
// is neither the attribute name nor the predicate_expr operator.
func lastExprChild(n *compiler.Node) *compiler.Node {
	cs := n.ChildNodes()
	if len(cs) == 0 {
		return nil
	}
	return cs[len(cs)-1]
}
