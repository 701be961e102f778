package planner

import (
	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/eval"
	"github.com/inferenceql/iqlgo/ierr"
	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/value"
)

// rowTypeAttr/rowTypeValue name the bookkeeping attribute the row database
// (package db) tags every row with, letting entityEnumeration match "every
// row" via an ordinary pattern clause rather than a dedicated primitive.
const (
	rowTypeAttr  value.Symbol = "iql_type"
	rowTypeValue value.Symbol = "row"
)

// compileSource resolves a select_expr's from_clause to the Relation the
// query runs against. A nil fc means no FROM was written, which defaults to
// the config's default table (spec.md §4.2 "data defaults to the table
// named `data`").
//
// The row database itself — tagging rows with iql_type/db_id — is not built
// here: spec.md §4.7 splits that step out to the executor, which runs after
// the validator has had a chance to require a LIMIT on a query selecting
// from a generated table. compileSource only ever returns the untagged
// Relation named by the from_clause.
func compileSource(fc *compiler.Node, c *ctx) (*value.Relation, error) {
	if fc == nil {
		return lookupRelation(c.cfg.DefaultTable, c)
	}
	if name := fc.Get(compiler.TagName); name != nil {
		s, _ := name.OnlyLeaf()
		return lookupRelation(value.Symbol(s), c)
	}
	if gt := fc.Get(compiler.TagGeneratedTableExpr); gt != nil {
		v, err := eval.Eval(gt, c.env)
		if err != nil {
			return nil, err
		}
		rel, ok := v.(*value.Relation)
		if !ok {
			return nil, ierr.Newf(ierr.KindClauseCompilation, "generated_table_expr did not produce a relation: %s", compiler.Unparse(gt))
		}
		return rel, nil
	}
	if rv := fc.Get(compiler.TagRelationValue); rv != nil {
		rel, err := compiler.ReadRelationValue(rv)
		if err != nil {
			return nil, err
		}
		return rel, nil
	}
	return nil, ierr.Newf(ierr.KindClauseCompilation, "unsupported from_clause: %s", compiler.Unparse(fc))
}

func lookupRelation(name value.Symbol, c *ctx) (*value.Relation, error) {
	v, err := eval.Lookup(c.env, name)
	if err != nil {
		return nil, err
	}
	rel, ok := v.(*value.Relation)
	if !ok {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "%q is not a relation", name)
	}
	return rel, nil
}

// entityEnumeration is the base clause every compiled SELECT opens with: it
// binds entityVar to each row of the datasource in turn. Every row the
// executor's row database constructs carries iql_type="row" (spec.md §6),
// so matching on that attribute is how the IR enumerates "every row"
// without needing a dedicated iteration primitive.
func entityEnumeration() ir.Clause {
	return ir.PatternClause{
		Entity: entityVar,
		Attr:   rowTypeAttr,
		Value:  ir.ConstTerm(rowTypeValue),
	}
}
