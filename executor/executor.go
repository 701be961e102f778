// executor runs a compiled select_expr end to end: plan, build the row
// database, run the IR query, and apply the post-processing pipeline
// (spec.md §4.7 "Execution of select_expr"). It registers itself with the
// eval package's RunSelect hook in an init function, the same
// self-registration idiom cdb's driver package uses with database/sql's
// sql.Register — this breaks the import cycle between eval (which the
// clause compiler needs, to read literal and model expressions out of a
// SELECT's sub-nodes) and planner/executor (which need eval to compile
// those same sub-nodes).
package executor

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/db"
	"github.com/inferenceql/iqlgo/env"
	"github.com/inferenceql/iqlgo/eval"
	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/planner"
	"github.com/inferenceql/iqlgo/validator"
	"github.com/inferenceql/iqlgo/value"
)

func init() {
	eval.RunSelect = RunSelect
}

// Logger is the package-level logger every RunSelect call reports query
// shape and timing through at debug level. Callers embedding this engine in
// a larger service may reassign it (e.g. a *logrus.Entry carrying
// request-scoped fields) the way a driver reassigns cdb's package logger.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// dbIDAttr and iqlTypeAttr name the row database's private bookkeeping
// attributes, stripped from every result row by the post-processing
// pipeline's final step (spec.md §4.7).
const (
	dbIDAttr    value.Symbol = db.DBID
	iqlTypeAttr value.Symbol = db.IQLType
)

// RunSelect compiles and runs n (a select_expr) against e, implementing
// spec.md §4.3's validation pass and §4.7's plan/build/run/post-process
// pipeline in full. It is the sole entry point eval.Eval's select_expr case
// calls through.
func RunSelect(n *compiler.Node, e env.Env) (*value.Relation, error) {
	cfg := env.DefaultConfig()

	if err := validator.Validate(n, cfg); err != nil {
		return nil, err
	}

	compiled, err := planner.Compile(n, e, cfg)
	if err != nil {
		return nil, err
	}

	if explainRequested(n) {
		return explainRelation(compiled), nil
	}

	source := applyAdding(compiled.Source, compiled.Adding)
	if source.IsLazy() {
		stream := source.Stream
		source.Materialize(compiled.Limit)
		if es, ok := stream.(value.ErrStream); ok && es.Err() != nil {
			return nil, es.Err()
		}
	}

	rows := db.Build(source.Rows, source.Schema)
	compiled.Plan.Inputs[0] = rows

	resultRows, err := ir.Run(compiled.Plan)
	if err != nil {
		return nil, err
	}

	resultRows = postProcess(resultRows, compiled)
	columns := resultColumns(compiled.Plan.Query, resultRows)

	Logger.WithFields(logrus.Fields{
		"clauses": len(compiled.Plan.Query.Where),
		"rows_in": len(rows),
		"rows_out": len(resultRows),
	}).Debug("select_expr executed")

	return value.NewRelation(columns, resultRows), nil
}

// applyAdding injects a NO_VALUE-valued column named name into every row of
// source, and into its declared column list, before the row database is
// built (spec.md §4.7 step 2). A nil or empty name leaves source untouched.
// The added column carries no statistical type, so source's Schema (if any)
// still applies unchanged to the rest of the columns.
func applyAdding(source *value.Relation, name value.Symbol) *value.Relation {
	if name == "" {
		return source
	}
	columns := append(slices.Clone(source.Columns), name)
	if source.IsLazy() {
		out := value.NewStreamRelation(columns, &addingStream{inner: source.Stream, attr: name})
		out.Schema = source.Schema
		return out
	}
	rows := make([]value.Row, len(source.Rows))
	for i, r := range source.Rows {
		rows[i] = r.With(name, value.NO_VALUE)
	}
	out := value.NewRelation(columns, rows)
	out.Schema = source.Schema
	return out
}

// addingStream wraps a RowStream, injecting a NO_VALUE-valued attr into every
// row it yields, and otherwise passing Next's exhaustion/error signal
// through unchanged (unlike value.NewGeneratorStream, whose Next always
// reports ok=true and so cannot represent a fallible stream's true end).
type addingStream struct {
	inner value.RowStream
	attr  value.Symbol
}

func (s *addingStream) Next() (value.Row, bool) {
	r, ok := s.inner.Next()
	if !ok {
		return nil, false
	}
	return r.With(s.attr, value.NO_VALUE), true
}

func (s *addingStream) Err() error {
	if e, ok := s.inner.(value.ErrStream); ok {
		return e.Err()
	}
	return nil
}

// postProcess applies the four post-processing transducers in spec.md
// §4.7's fixed order: strip NO_VALUE cells, sort, apply LIMIT, strip
// private attributes.
func postProcess(rows []value.Row, c *planner.Compiled) []value.Row {
	stripped := make([]value.Row, len(rows))
	for i, r := range rows {
		stripped[i] = value.StripNoValue(r)
	}

	sortRows(stripped, c)

	if c.Limit >= 0 && c.Limit < len(stripped) {
		stripped = stripped[:c.Limit]
	}

	out := make([]value.Row, len(stripped))
	for i, r := range stripped {
		out[i] = value.StripAttrs(r, dbIDAttr, iqlTypeAttr)
	}
	return out
}

// sortRows orders rows in place by c's ORDER BY column and comparator, or by
// db_id ascending when the query wrote no ORDER BY (spec.md §4.7's default
// sort key). The sort is stable so that rows the comparator treats as equal
// keep the underlying engine's enumeration order (spec.md §5's ordering
// guarantee).
func sortRows(rows []value.Row, c *planner.Compiled) {
	col := c.OrderByColumn
	cmp := c.OrderByCmp
	if col == "" {
		col = dbIDAttr
		cmp = value.Ascending
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return cmp(rows[i].Get(col), rows[j].Get(col)) < 0
	})
}

// resultColumns names a result relation's columns attribute (spec.md §4.7
// step 5): the query's declared keys, in order, when present, else the
// sorted union of every result row's keys.
func resultColumns(q ir.Query, rows []value.Row) []value.Symbol {
	if len(q.Keys) > 0 {
		return slices.Clone(q.Keys)
	}
	seen := map[value.Symbol]bool{}
	for _, r := range rows {
		for k := range r {
			seen[k] = true
		}
	}
	out := maps.Keys(seen)
	slices.Sort(out)
	return out
}

// explainRequested reports whether n's select_expr carries the leading
// EXPLAIN keyword (compiler/parser.go records it as a bare leaf child, not a
// wrapped tag).
func explainRequested(n *compiler.Node) bool {
	return n.HasLeaf("EXPLAIN")
}

// explainRelation renders a compiled plan as a relation instead of running
// it, a direct generalization of cdb's EXPLAIN/EXPLAIN QUERY PLAN surface
// (vm.go's formatExplain, which returns one row per bytecode command rather
// than executing them). Row 0 summarizes the query shape; the remaining
// rows describe one Where clause each, in evaluation order.
func explainRelation(c *planner.Compiled) *value.Relation {
	columns := []value.Symbol{"addr", "opcode", "detail"}
	rows := []value.Row{
		{
			"addr":   int64(0),
			"opcode": value.Symbol("Query"),
			"detail": fmt.Sprintf("find=%v keys=%v in=%v", c.Plan.Query.Find, c.Plan.Query.Keys, c.Plan.Query.In),
		},
	}
	for i, cl := range c.Plan.Query.Where {
		rows = append(rows, value.Row{
			"addr":   int64(i + 1),
			"opcode": value.Symbol(clauseOpcode(cl)),
			"detail": clauseDetail(cl),
		})
	}
	return value.NewRelation(columns, rows)
}

func clauseOpcode(c ir.Clause) string {
	switch c.(type) {
	case ir.PatternClause:
		return "Pattern"
	case ir.PredicateClause:
		return "Predicate"
	case ir.GroundClause:
		return "Ground"
	case ir.GetElseClause:
		return "GetElse"
	case ir.PullClause:
		return "Pull"
	case ir.OrJoinClause:
		return "OrJoin"
	}
	return "Unknown"
}

func clauseDetail(c ir.Clause) string {
	switch cl := c.(type) {
	case ir.PatternClause:
		return fmt.Sprintf("[%s %s %v]", cl.Entity, cl.Attr, cl.Value)
	case ir.PredicateClause:
		return fmt.Sprintf("[(%v %v) %s]", cl.Fn, cl.Args, cl.Result)
	case ir.GroundClause:
		return fmt.Sprintf("(ground %v) %s", cl.Value, cl.Result)
	case ir.GetElseClause:
		return fmt.Sprintf("(get_else %s %s %v) %s", cl.Entity, cl.Attr, cl.Default, cl.Result)
	case ir.PullClause:
		if cl.Star {
			return fmt.Sprintf("(pull * %s) %s", cl.Entity, cl.Result)
		}
		return fmt.Sprintf("(pull %v %s) %s", cl.Attrs, cl.Entity, cl.Result)
	case ir.OrJoinClause:
		return fmt.Sprintf("(or_join %v, %d branches)", cl.Bound, len(cl.Subclauses))
	}
	return ""
}
