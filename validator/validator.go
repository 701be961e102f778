// validator enforces the two whole-parse-tree shape rules spec.md §4.3
// names before a select_expr is allowed to compile: a query selecting from
// a generated table must carry a LIMIT, and a query may never name
// anything but the `data` default table in a from_clause. Both rules are
// checked over the entire parse tree, not just the top-level statement, so
// a nested subquery violating either rule is caught too.
//
// Grounded on cdb's planner validation pass (planner/planner.go's
// checkColumnsExist et al. walk the parsed statement before building a
// plan); generalized from schema/type checks to two tree-shape predicates
// because this engine has no catalog to check column existence against.
package validator

import (
	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/env"
	"github.com/inferenceql/iqlgo/ierr"
)

// Validate walks n (a select_expr, or anything containing one) and returns
// the first violation found, in document order, as an *ierr.EngineError
// with Kind KindIncorrectInput. A nil return means n is safe to compile.
func Validate(n *compiler.Node, cfg env.Config) error {
	if err := checkGeneratedTableLimit(n); err != nil {
		return err
	}
	return checkDataTableOnly(n, cfg)
}

// checkGeneratedTableLimit enforces spec.md §4.3: "SELECT ... FROM
// (GENERATE ...) without a LIMIT fails validation." The rule only applies
// at a select_expr's own from_clause; GENERATE appearing anywhere else
// (inside a model_expr's generate_expr, not wrapped in a
// generated_table_expr) is an ordinary model value, not a table, and is
// unaffected.
func checkGeneratedTableLimit(n *compiler.Node) error {
	var walk func(*compiler.Node) error
	walk = func(node *compiler.Node) error {
		if node == nil {
			return nil
		}
		if node.Tag == compiler.TagSelectExpr {
			fc := node.Get(compiler.TagFromClause)
			if fc != nil && fc.Get(compiler.TagGeneratedTableExpr) != nil && node.Get(compiler.TagLimitClause) == nil {
				return ierr.WithNode(ierr.New(ierr.KindIncorrectInput, "SELECT FROM a generated table requires a LIMIT"), compiler.Unparse(node))
			}
		}
		for _, ch := range node.ChildNodes() {
			if err := walk(ch); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(n)
}

// checkDataTableOnly enforces spec.md §4.3: any select_expr's from_clause
// naming an identifier other than the configured default table fails
// validation. A from_clause naming a generated_table_expr or relation_value
// instead of a bare name is unaffected; those are not table references.
func checkDataTableOnly(n *compiler.Node, cfg env.Config) error {
	var walk func(*compiler.Node) error
	walk = func(node *compiler.Node) error {
		if node == nil {
			return nil
		}
		if node.Tag == compiler.TagSelectExpr {
			if fc := node.Get(compiler.TagFromClause); fc != nil {
				if name := fc.Get(compiler.TagName); name != nil {
					if s, _ := name.OnlyLeaf(); s != string(cfg.DefaultTable) {
						return ierr.WithNode(ierr.Newf(ierr.KindIncorrectInput, "FROM may only name %q, got %q", cfg.DefaultTable, s), compiler.Unparse(node))
					}
				}
			}
		}
		for _, ch := range node.ChildNodes() {
			if err := walk(ch); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(n)
}
