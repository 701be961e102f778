// db builds the row database the IR's pattern clauses enumerate: every row
// of a source Relation tagged with a synthetic identity (db_id) and the
// iql_type marker entityEnumeration's base pattern clause matches against
// (spec.md §6), plus best-effort coercion of cell values to the
// statistical type a schema declares for their column.
//
// cdb's analog is its pager/kv layer materializing a B-tree leaf into a
// tuple with a rowid prepended (kv/catalog.go's rowid handling); this
// module has no on-disk storage, so "build the row database" is a pure
// in-memory tagging pass instead of a page read, but the tagging itself —
// stamp identity, don't touch the caller's data otherwise — follows the
// same idea.
package db

import (
	"github.com/inferenceql/iqlgo/stattype"
	"github.com/inferenceql/iqlgo/value"
)

// IQLType is the attribute name entityEnumeration matches on to enumerate
// every database row (spec.md §6).
const IQLType value.Symbol = "iql_type"

// RowType is the value every row database row's IQLType attribute holds.
const RowType value.Symbol = "row"

// DBID is the attribute name a row database's synthetic per-row identity
// is stored under.
const DBID value.Symbol = "db_id"

// Schema maps a column to the statistical type Coerce should treat its
// values as, when the caller has one to supply (spec.md's non-goal:
// coercion is best-effort and never required to run a query).
type Schema map[value.Symbol]stattype.ST

// Build tags every row of rows with a fresh db_id and RowType, applying
// schema-driven coercion first if schema is non-nil. rows is not mutated;
// Build returns a fresh slice of fresh Row copies.
func Build(rows []value.Row, schema Schema) []value.Row {
	out := make([]value.Row, len(rows))
	for i, r := range rows {
		row := r.Clone()
		if schema != nil {
			row = Coerce(row, schema)
		}
		row[IQLType] = RowType
		row[DBID] = int64(i)
		out[i] = row
	}
	return out
}

// Coerce applies best-effort statistical-type coercion to every attribute
// of row that schema declares a type for: binary cells become bool,
// categorical cells become string, and gaussian cells become float64.
// NO_VALUE and null cells pass through untouched — coercion never invents a
// value spec.md's placeholder law didn't already put there. A cell that
// cannot be coerced to its declared type is left as-is rather than erroring
// out: coercion is an optimization for comparisons and GPM calls, not a
// validation gate.
func Coerce(row value.Row, schema Schema) value.Row {
	out := row.Clone()
	for attr, st := range schema {
		v, ok := out[attr]
		if !ok || value.IsNull(v) {
			continue
		}
		switch st {
		case stattype.Binary:
			if b, ok := asBool(v); ok {
				out[attr] = b
			}
		case stattype.Categorical:
			if s, ok := asString(v); ok {
				out[attr] = s
			}
		case stattype.Gaussian:
			if f, ok := asFloat(v); ok {
				out[attr] = f
			}
		}
	}
	return out
}

func asBool(v value.Value) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int64:
		return b != 0, true
	case int:
		return b != 0, true
	case string:
		switch b {
		case "true", "TRUE", "1":
			return true, true
		case "false", "FALSE", "0":
			return false, true
		}
	}
	return false, false
}

func asString(v value.Value) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case value.Symbol:
		return s.String(), true
	}
	return "", false
}

func asFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
