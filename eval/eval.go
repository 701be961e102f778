// eval dispatches on parse-tree tag to evaluate every non-SELECT
// expression: names, refs, model expressions (condition, constrain,
// generate), generated-table streams, comparator expressions, and insert
// expressions (spec.md §4.4).
//
// Grounded on cdb's compiler.ExprVisitor (compiler/ast.go's Expr variants
// dispatched by a type switch in the planner's predicate_generator.go),
// generalized from a fixed set of SQL scalar expression kinds to the
// parse-tree-tag dispatch spec.md §9 calls for: one arm per recognized
// tag, a default arm that descends a lone child or returns a lone leaf,
// and an error for anything else.
package eval

import (
	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/env"
	"github.com/inferenceql/iqlgo/gpm"
	"github.com/inferenceql/iqlgo/ierr"
	"github.com/inferenceql/iqlgo/value"
)

// SelectRunner executes a compiled select_expr and returns its result
// relation. Eval's select_expr case calls through this interface rather
// than importing the planner/executor packages directly, breaking what
// would otherwise be an import cycle (the clause compiler needs Eval to
// read literal expressions and model expressions out of SELECT sub-nodes).
// The executor package registers itself here the way cdb's driver package
// registers itself with database/sql's sql.Register in an init function.
type SelectRunner func(n *compiler.Node, e env.Env) (*value.Relation, error)

// RunSelect is set by the executor package's init function. A nil value
// means no executor package has been linked in, which should never happen
// in a built binary.
var RunSelect SelectRunner

// Eval evaluates a parse-tree node to a runtime value against environment
// e.
func Eval(n *compiler.Node, e env.Env) (value.Value, error) {
	switch n.Tag {
	case compiler.TagBool, compiler.TagInt, compiler.TagNat, compiler.TagFloat,
		compiler.TagString, compiler.TagNull, compiler.TagSimpleSymbol:
		return compiler.ReadLiteral(n)

	case compiler.TagName:
		s, _ := n.OnlyLeaf()
		return value.Symbol(s), nil

	case compiler.TagRef:
		return evalRef(n, e)

	case compiler.TagPredicateExpr:
		op, _ := n.OnlyLeaf()
		return value.Symbol(op), nil

	case compiler.TagAscending:
		return value.Comparator(value.Ascending), nil

	case compiler.TagDescending:
		return value.Comparator(value.Descending), nil

	case compiler.TagVariableList:
		return evalVariableList(n)

	case compiler.TagValueList, compiler.TagValueListsFull, compiler.TagValueListsSparse, compiler.TagRelationValue:
		return compiler.ReadLiteral(n)

	case compiler.TagInsertExpr:
		return evalInsertExpr(n, e)

	case compiler.TagConditionedByExpr:
		return evalConditionedBy(n, e)

	case compiler.TagConstrainedByExpr:
		return evalConstrainedBy(n, e)

	case compiler.TagGenerateExpr:
		return evalGenerateExpr(n, e)

	case compiler.TagGeneratedTableExpr:
		return evalGeneratedTable(n, e)

	case compiler.TagSelectExpr:
		if RunSelect == nil {
			return nil, ierr.New(ierr.KindClauseCompilation, "no executor linked in for select_expr")
		}
		return RunSelect(n, e)
	}

	if only := n.OnlyChild(); only != nil {
		return Eval(only, e)
	}
	if leaf, ok := n.OnlyLeaf(); ok {
		return leaf, nil
	}
	return nil, ierr.Newf(ierr.KindClauseCompilation, "eval: unsupported tag %q in context", n.Tag)
}

func evalRef(n *compiler.Node, e env.Env) (value.Value, error) {
	inner := n.OnlyChild()
	if inner == nil {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "malformed ref node %s", compiler.Unparse(n))
	}
	name, _ := inner.OnlyLeaf()
	return Lookup(e, value.Symbol(name))
}

// Lookup resolves name against e, raising an "unbound name" error (spec.md
// §7) naming both the missing key and the available keys if it is absent.
func Lookup(e env.Env, name value.Symbol) (value.Value, error) {
	v, ok := e[name]
	if !ok {
		return nil, ierr.Newf(ierr.KindUnboundName, "unbound name %q (available: %v)", name, availableKeys(e))
	}
	return v, nil
}

func availableKeys(e env.Env) []value.Symbol {
	out := make([]value.Symbol, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	return out
}

func evalVariableList(n *compiler.Node) (value.Value, error) {
	out := make([]value.Symbol, 0, len(n.ChildNodes()))
	for _, c := range n.ChildNodes() {
		s, _ := c.OnlyLeaf()
		out = append(out, value.Symbol(s))
	}
	return out, nil
}

func evalInsertExpr(n *compiler.Node, e env.Env) (value.Value, error) {
	nameNode := n.Get(compiler.TagName)
	if nameNode == nil {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "insert_expr missing table name: %s", compiler.Unparse(n))
	}
	name, _ := nameNode.OnlyLeaf()
	base, err := Lookup(e, value.Symbol(name))
	if err != nil {
		return nil, err
	}
	rel, ok := base.(*value.Relation)
	if !ok {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "insert into %q: not a relation", name)
	}
	vlfNode := n.Get(compiler.TagValueListsFull)
	if vlfNode == nil {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "insert_expr missing values: %s", compiler.Unparse(n))
	}
	lists, err := compiler.ReadValueListsFull(vlfNode)
	if err != nil {
		return nil, err
	}
	rows := make([]value.Row, len(rel.Rows), len(rel.Rows)+len(lists))
	copy(rows, rel.Rows)
	for _, vl := range lists {
		row := value.Row{}
		for i, col := range rel.Columns {
			if i < len(vl) {
				row[col] = vl[i]
			} else {
				row[col] = value.NO_VALUE
			}
		}
		rows = append(rows, row)
	}
	return value.NewRelation(rel.Columns, rows), nil
}

// EvalModel evaluates a model_expr node (a bare name, generate_expr,
// conditioned_by_expr, or constrained_by_expr) and asserts the result is a
// GPM handle. A bare name is looked up against e directly rather than run
// through Eval's TagName case, which reads a name as the Symbol it denotes
// rather than resolving it (names only resolve to their bound value inside
// a ref).
func EvalModel(n *compiler.Node, e env.Env) (gpm.GPM, error) {
	var v value.Value
	var err error
	if n.Tag == compiler.TagName {
		s, _ := n.OnlyLeaf()
		v, err = Lookup(e, value.Symbol(s))
	} else {
		v, err = Eval(n, e)
	}
	if err != nil {
		return nil, err
	}
	g, ok := v.(gpm.GPM)
	if !ok {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "%s does not denote a model", compiler.Unparse(n))
	}
	return g, nil
}

// evalEventListMap evaluates an event_list node to a plain constraint map,
// dropping any binding whose value is NO_VALUE (spec.md §4.4). A `*`
// element is meaningless outside the row-event protocol's row-pulling
// step and is skipped here.
func evalEventListMap(n *compiler.Node, e env.Env) (value.Row, error) {
	out := value.Row{}
	for _, c := range n.ChildNodes() {
		if c.Tag == compiler.TagStar {
			continue
		}
		sym, val, err := evalMapEntry(c, e)
		if err != nil {
			return nil, err
		}
		if value.IsNoValue(val) {
			continue
		}
		out[sym] = val
	}
	return out, nil
}

// evalMapEntry evaluates a map_entry_expr node's `name OP expr` into a
// (symbol, value) pair. The operator only matters to the clause compiler's
// density/distribution split (spec.md's GLOSSARY); conditioning and
// constraining always treat the pair as a point binding.
func evalMapEntry(n *compiler.Node, e env.Env) (value.Symbol, value.Value, error) {
	cs := n.ChildNodes()
	if len(cs) != 3 {
		return "", nil, ierr.Newf(ierr.KindClauseCompilation, "malformed map_entry_expr: %s", compiler.Unparse(n))
	}
	name, _ := cs[0].OnlyLeaf()
	val, err := Eval(cs[2], e)
	if err != nil {
		return "", nil, err
	}
	return value.Symbol(name), val, nil
}

func evalConditionedBy(n *compiler.Node, e env.Env) (value.Value, error) {
	cs := n.ChildNodes()
	if len(cs) != 2 {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "malformed conditioned_by_expr: %s", compiler.Unparse(n))
	}
	model, err := EvalModel(cs[0], e)
	if err != nil {
		return nil, err
	}
	constraints, err := evalEventListMap(cs[1], e)
	if err != nil {
		return nil, err
	}
	return gpm.NewConstrainedGPM(model, nil, constraints), nil
}

func evalConstrainedBy(n *compiler.Node, e env.Env) (value.Value, error) {
	cs := n.ChildNodes()
	if len(cs) < 2 {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "malformed constrained_by_expr: %s", compiler.Unparse(n))
	}
	model, err := EvalModel(cs[0], e)
	if err != nil {
		return nil, err
	}
	targets, err := targetSet(cs[1])
	if err != nil {
		return nil, err
	}
	constraints := value.Row{}
	if len(cs) == 3 {
		constraints, err = evalEventListMap(cs[2], e)
		if err != nil {
			return nil, err
		}
	}
	return gpm.NewConstrainedGPM(model, targets, constraints), nil
}

func evalGenerateExpr(n *compiler.Node, e env.Env) (value.Value, error) {
	cs := n.ChildNodes()
	if len(cs) < 2 {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "malformed generate_expr: %s", compiler.Unparse(n))
	}
	targets, err := targetSet(cs[0])
	if err != nil {
		return nil, err
	}
	model, err := EvalModel(cs[1], e)
	if err != nil {
		return nil, err
	}
	constraints := value.Row{}
	if len(cs) == 3 {
		constraints, err = evalEventListMap(cs[2], e)
		if err != nil {
			return nil, err
		}
	}
	return gpm.NewConstrainedGPM(model, targets, constraints), nil
}

func targetSet(varList *compiler.Node) (map[value.Symbol]bool, error) {
	if varList.Tag != compiler.TagVariableList {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "expected variable_list, got %s", varList.Tag)
	}
	out := map[value.Symbol]bool{}
	for _, c := range varList.ChildNodes() {
		s, _ := c.OnlyLeaf()
		out[value.Symbol(s)] = true
	}
	return out, nil
}

// evalGeneratedTable evaluates a generated_table_expr into a lazy,
// unbounded Relation backed by repeated ConstrainedGPM.Simulate calls
// (spec.md §4.4, §9 "Infinite lazy sequences").
func evalGeneratedTable(n *compiler.Node, e env.Env) (value.Value, error) {
	genNode := n.OnlyChild()
	if genNode == nil || genNode.Tag != compiler.TagGenerateExpr {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "malformed generated_table_expr: %s", compiler.Unparse(n))
	}
	varListNode := genNode.Get(compiler.TagVariableList)
	targets, err := targetSet(varListNode)
	if err != nil {
		return nil, err
	}
	columns := make([]value.Symbol, 0, len(targets))
	for _, c := range varListNode.ChildNodes() {
		s, _ := c.OnlyLeaf()
		columns = append(columns, value.Symbol(s))
	}
	modelVal, err := evalGenerateExpr(genNode, e)
	if err != nil {
		return nil, err
	}
	cg, ok := modelVal.(*gpm.ConstrainedGPM)
	if !ok {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "generate_expr did not produce a constrained model")
	}
	stream := value.NewFallibleGeneratorStream(func() (value.Row, error) {
		return cg.Simulate(targets, value.Row{})
	})
	return value.NewStreamRelation(columns, stream), nil
}
