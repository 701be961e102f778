package planner

import (
	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/eval"
	"github.com/inferenceql/iqlgo/ierr"
	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/value"
)

// compileSelectClause compiles a select_list node into a Fragment. `SELECT
// *` pulls the whole current row as the lone find-variable (spec.md §4.5
// "a bare `*` finds the row itself, with no keys"); an explicit selection
// list compiles each selection independently and merges the results,
// column order becoming find/keys order.
func compileSelectClause(sl *compiler.Node, c *ctx) (Fragment, error) {
	if sl.Get(compiler.TagStar) != nil {
		rowVar := c.gensym()
		return Fragment{
			Find:  []ir.Var{rowVar},
			Where: []ir.Clause{ir.PullClause{Star: true, Entity: entityVar, Result: rowVar}},
		}, nil
	}
	frags := make([]Fragment, 0, len(sl.ChildNodes()))
	for _, sel := range sl.ChildNodes() {
		f, err := compileSelection(sel, c)
		if err != nil {
			return Fragment{}, err
		}
		frags = append(frags, f)
	}
	return Merge(frags...), nil
}

func compileSelection(sel *compiler.Node, c *ctx) (Fragment, error) {
	switch sel.Tag {
	case compiler.TagLogpdfClause, compiler.TagProbabilityClause:
		return compileLogpdfClause(sel, c)
	case compiler.TagRowIDSelection:
		return compileRowIDSelection(sel, c)
	case compiler.TagColumnSelection:
		return compileColumnSelection(sel, c)
	}
	return Fragment{}, ierr.Newf(ierr.KindClauseCompilation, "unrecognized selection %s", sel.Tag)
}

// compileColumnSelection compiles `name [AS alias]` to a get_else clause
// (missing attrs read as NO_VALUE rather than failing, per spec.md §4.4's
// placeholder law) keyed by the alias if one was written, else the column
// name itself.
func compileColumnSelection(cs *compiler.Node, c *ctx) (Fragment, error) {
	nameNode := cs.Get(compiler.TagName)
	if nameNode == nil {
		return Fragment{}, ierr.Newf(ierr.KindClauseCompilation, "column_selection missing name: %s", compiler.Unparse(cs))
	}
	name, _ := nameNode.OnlyLeaf()
	alias := name
	if ac := cs.Get(compiler.TagAsClause); ac != nil {
		if an := ac.Get(compiler.TagName); an != nil {
			alias, _ = an.OnlyLeaf()
		}
	}
	resultVar := c.gensym()
	clause := ir.GetElseClause{
		Entity:  entityVar,
		Attr:    value.Symbol(name),
		Default: ir.ConstTerm(value.NO_VALUE),
		Result:  resultVar,
	}
	return Fragment{
		Find:  []ir.Var{resultVar},
		Keys:  []value.Symbol{value.Symbol(alias)},
		Where: []ir.Clause{clause},
	}, nil
}

// compileRowIDSelection compiles the ROWID pseudo-column to a get_else
// clause reading the row database's synthetic db_id attribute (spec.md §6).
func compileRowIDSelection(rs *compiler.Node, c *ctx) (Fragment, error) {
	resultVar := c.gensym()
	clause := ir.GetElseClause{
		Entity:  entityVar,
		Attr:    dbIDAttr,
		Default: ir.ConstTerm(value.NO_VALUE),
		Result:  resultVar,
	}
	return Fragment{
		Find:  []ir.Var{resultVar},
		Keys:  []value.Symbol{"rowid"},
		Where: []ir.Clause{clause},
	}, nil
}

// dbIDAttr names the row database's synthetic identity attribute (spec.md
// §6), shared with entityEnumeration's row-matching in source.go.
const dbIDAttr value.Symbol = "db_id"

// compileLogpdfClause compiles `DENSITY OF events [UNDER model] [AS alias]`
// (and its PROBABILITY variant) via the row-event protocol of spec.md
// §4.5.1: pull the current row (the "row clause"), ground the event_list's
// literal bindings (the "binding clause"), and merge the two — binding map
// wins on overlap, the Open Question decision recorded in DESIGN.md —
// before calling the `logpdf` builtin under the resolved model and
// exponentiating the result. spec.md §4.5's logpdf_clause row describes
// both DENSITY and PROBABILITY as invoking "logpdf then exp": the two
// selections share this compilation entirely and differ only in their
// default result alias.
func compileLogpdfClause(n *compiler.Node, c *ctx) (Fragment, error) {
	eventsNode := n.Get(compiler.TagEventList)
	if eventsNode == nil {
		return Fragment{}, ierr.Newf(ierr.KindClauseCompilation, "%s missing event_list: %s", n.Tag, compiler.Unparse(n))
	}

	rowVar := c.gensym()
	rowClause := compileRowClause(eventsNode, rowVar)

	bindingVar := c.gensym()
	bindingTerm, err := groundableEventMap(eventsNode, c)
	if err != nil {
		return Fragment{}, err
	}
	bindingClause := ir.GroundClause{Value: bindingTerm, Result: bindingVar}

	mergeFn, err := builtinTerm(c, "merge")
	if err != nil {
		return Fragment{}, err
	}
	eventsVar := c.gensym()
	mergeClause := ir.PredicateClause{
		Fn:     mergeFn,
		Args:   []ir.Term{ir.VarTerm(rowVar), ir.VarTerm(bindingVar)},
		Result: eventsVar,
	}

	modelVar := c.gensym()
	modelTerm, err := compileModelRef(logpdfModelNode(n), c)
	if err != nil {
		return Fragment{}, err
	}
	modelClause := ir.GroundClause{Value: modelTerm, Result: modelVar}

	// The call-site constraint set is always empty: any conditioning this
	// density/probability clause needs is expressed on the model_expr
	// itself (UNDER m GIVEN ...), not re-supplied at the logpdf call.
	noConstraintsVar := c.gensym()
	noConstraintsClause := ir.GroundClause{Value: ir.ConstTerm(value.Row{}), Result: noConstraintsVar}

	logpdfFn, err := builtinTerm(c, "logpdf")
	if err != nil {
		return Fragment{}, err
	}
	logpdfVar := c.gensym()
	logpdfClause := ir.PredicateClause{
		Fn:     logpdfFn,
		Args:   []ir.Term{ir.VarTerm(modelVar), ir.VarTerm(eventsVar), ir.VarTerm(noConstraintsVar)},
		Result: logpdfVar,
	}

	// spec.md §4.5's logpdf_clause row applies to both DENSITY and
	// PROBABILITY alike: "invokes logpdf then exp". Both surface
	// exp(logpdf), not the raw log-density.
	expFn, err := builtinTerm(c, "exp")
	if err != nil {
		return Fragment{}, err
	}
	resultVar := c.gensym()
	expClause := ir.PredicateClause{
		Fn:     expFn,
		Args:   []ir.Term{ir.VarTerm(logpdfVar)},
		Result: resultVar,
	}

	where := []ir.Clause{rowClause, bindingClause, mergeClause, modelClause, noConstraintsClause, logpdfClause, expClause}

	alias := value.Symbol("density")
	if n.Tag == compiler.TagProbabilityClause {
		alias = "probability"
	}
	if ac := n.Get(compiler.TagAsClause); ac != nil {
		if an := ac.Get(compiler.TagName); an != nil {
			s, _ := an.OnlyLeaf()
			alias = value.Symbol(s)
		}
	}

	return Fragment{
		Find:  []ir.Var{resultVar},
		Keys:  []value.Symbol{alias},
		Where: where,
	}, nil
}

// compileRowClause implements the row-event protocol's first step (spec.md
// §4.5.1): pull the whole current row if the event_list contains `*`,
// else pull only the named event columns, else (an empty event_list, which
// never actually arises from the grammar but is honored for uniformity)
// ground the empty row.
func compileRowClause(eventsNode *compiler.Node, result ir.Var) ir.Clause {
	names := []value.Symbol{}
	star := false
	for _, ch := range eventsNode.ChildNodes() {
		if ch.Tag == compiler.TagStar {
			star = true
			continue
		}
		if cs := ch.ChildNodes(); len(cs) > 0 {
			if n, ok := cs[0].OnlyLeaf(); ok {
				names = append(names, value.Symbol(n))
			}
		}
	}
	if star {
		return ir.PullClause{Star: true, Entity: entityVar, Result: result}
	}
	if len(names) > 0 {
		return ir.PullClause{Attrs: names, Entity: entityVar, Result: result}
	}
	return ir.GroundClause{Value: ir.ConstTerm(value.Row{}), Result: result}
}

// logpdfModelNode returns a logpdf_clause/probability_clause's optional
// UNDER model_expr child. model_expr has no wrapper tag of its own — it
// reduces directly to a bare name, generate_expr, conditioned_by_expr, or
// constrained_by_expr — so the only way to find it among logpdf_clause's
// optional trailing children is by elimination: whichever child is neither
// the event_list nor the as_clause wrapper (added to the grammar precisely
// to make this elimination unambiguous when only one of the two optional
// trailing children is present).
func logpdfModelNode(n *compiler.Node) *compiler.Node {
	for _, ch := range n.ChildNodes() {
		if ch.Tag != compiler.TagEventList && ch.Tag != compiler.TagAsClause {
			return ch
		}
	}
	return nil
}

// compileModelRef resolves a logpdf_clause's optional UNDER model_expr to a
// constant Term holding the GPM handle, defaulting to the config's default
// model when none was written.
func compileModelRef(modelNode *compiler.Node, c *ctx) (ir.Term, error) {
	if modelNode == nil {
		g, err := eval.Lookup(c.env, c.cfg.DefaultModel)
		if err != nil {
			return ir.Term{}, err
		}
		return ir.ConstTerm(g), nil
	}
	g, err := eval.EvalModel(modelNode, c.env)
	if err != nil {
		return ir.Term{}, err
	}
	return ir.ConstTerm(g), nil
}

// builtinTerm resolves name against the environment's builtins and wraps it
// as a constant Term (spec.md §4.7's input-lifting pass promotes these into
// explicit `in` parameters later, mirroring how it treats the `logpdf`
// builtin referenced from a density/probability clause).
func builtinTerm(c *ctx, name value.Symbol) (ir.Term, error) {
	v, err := eval.Lookup(c.env, name)
	if err != nil {
		return ir.Term{}, err
	}
	return ir.ConstTerm(v), nil
}

// groundableEventMap evaluates an event_list's literal map_entry_exprs into
// a constant Term holding the resulting Row, for use as a ground clause's
// Value. A `*` entry (which any event_list may carry, a density/probability
// clause's included) contributes no bindings.
func groundableEventMap(n *compiler.Node, c *ctx) (ir.Term, error) {
	row := value.Row{}
	for _, ch := range n.ChildNodes() {
		if ch.Tag == compiler.TagStar {
			continue
		}
		cs := ch.ChildNodes()
		if len(cs) != 3 {
			return ir.Term{}, ierr.Newf(ierr.KindClauseCompilation, "malformed map_entry_expr: %s", compiler.Unparse(ch))
		}
		name, _ := cs[0].OnlyLeaf()
		v, err := eval.Eval(cs[2], c.env)
		if err != nil {
			return ir.Term{}, err
		}
		row[value.Symbol(name)] = v
	}
	return ir.ConstTerm(row), nil
}
