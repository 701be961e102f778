// driver implements the engine's sole library entry point, spec.md §4.8's
// `q(query, rows, models)`: parse a query string, uniform the caller's rows
// against a placeholder-padded schema, build a per-call environment, and
// evaluate. Grounded on cdb's db.go (`(*db).execute` lexes, parses, plans
// and runs a single statement string) and vm/vm.go's `ExecuteResult`, whose
// `Duration` field is the precedent for this package's Debug-level timing
// log.
package driver

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/env"
	"github.com/inferenceql/iqlgo/eval"
	"github.com/inferenceql/iqlgo/gpm"
	"github.com/inferenceql/iqlgo/ierr"
	"github.com/inferenceql/iqlgo/stattype"
	"github.com/inferenceql/iqlgo/value"

	_ "github.com/inferenceql/iqlgo/executor" // links eval.RunSelect
)

// Logger is the package-level logger Query reports timing and plan-shape
// fields through at debug level, mirroring executor.Logger. Defaults to
// logrus's standard logger; callers may reassign it.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// Table is a named input relation supplied to Query: a slice of rows plus
// the relation's declared columns (spec.md §6's "Input relation"). Schema
// optionally names the statistical type of some of those columns, driving
// the best-effort pre-coercion spec.md §6 describes; a nil Schema runs the
// query with no coercion at all, exactly as if the column had no declared
// type.
type Table struct {
	Columns []value.Symbol
	Rows    []value.Row
	Schema  map[value.Symbol]stattype.ST
}

// Query evaluates a single query string against the supplied data table,
// any additional named tables, and any named models, implementing spec.md
// §4.8 in full. The default table (`data`) is always present in the
// environment even if not explicitly named in tables.
func Query(query string, data Table, tables map[value.Symbol]Table, models map[value.Symbol]gpm.GPM) (*value.Relation, error) {
	start := time.Now()

	tree, err := compiler.Parse(query)
	if err != nil {
		if pf, ok := err.(*compiler.ParseFailure); ok {
			return nil, ierr.Wrap(ierr.KindIncorrectInput, "parse failure", pf)
		}
		return nil, ierr.Wrap(ierr.KindIncorrectInput, "parse failure", err)
	}

	envTables := make(map[value.Symbol]*value.Relation, len(tables)+1)
	envTables[env.DefaultConfig().DefaultTable] = uniform(data)
	for name, t := range tables {
		envTables[name] = uniform(t)
	}

	e := env.Extend(envTables, models)

	result, err := eval.Eval(tree, e)
	if err != nil {
		return nil, err
	}

	rel, ok := result.(*value.Relation)
	if !ok {
		return nil, ierr.Newf(ierr.KindClauseCompilation, "query did not evaluate to a relation: %T", result)
	}

	Logger.WithFields(logrus.Fields{
		"duration": time.Since(start),
		"rows":     len(rel.Rows),
	}).Debug("query executed")

	return rel, nil
}

// uniform applies spec.md's placeholder law (§4/glossary: "Before execution
// the driver unions every row's keys with the relation's declared columns
// and inserts NO_VALUE for any missing cells") to every row of t, and
// attaches t's Schema so the row database executor.RunSelect builds from
// this relation can apply spec.md §6's coercion.
func uniform(t Table) *value.Relation {
	rows := make([]value.Row, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = value.AddPlaceholders(r, t.Columns)
	}
	rel := value.NewRelation(t.Columns, rows)
	rel.Schema = t.Schema
	return rel
}
