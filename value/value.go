// value defines the runtime value universe evaluation and execution operate
// over. cdb pins its registers to a small closed set of SQL scalar types
// (catalog.CdbType: int, str, var); this engine's value universe is wider —
// it must also hold rows, relations, comparators, predicate symbols and GPM
// handles — so instead of a closed tagged type it follows Go's idiomatic
// dynamic-value convention and represents a Value as any, the same way
// cdb's VM registers (vm/vm.go's `registers map[int]any`) hold whatever a
// given instruction produced.
package value

import "fmt"

// Value is any runtime value: nil, a bool, an int64, a float64, a string, a
// Symbol, a Row, a Relation, a Comparator, or a GPM handle.
type Value = any

// Symbol is an identifier used as a keyword-like value: a column name, a
// predicate name, or a bound variable name. Distinct from string so that
// `name` literals and `string` literals differ by type; Equal still treats a
// Symbol and a string with the same text as equal.
type Symbol string

func (s Symbol) String() string { return string(s) }

// noValue is the concrete sentinel type behind NO_VALUE. It is unexported so
// the only way to produce one is the NO_VALUE constant, and comparisons
// against it always go through IsNoValue rather than ad-hoc nil checks.
type noValue struct{}

func (noValue) String() string { return "NO_VALUE" }

// NO_VALUE is the canonical "absent" marker used to fill sparse relation
// cells to uniform attribute presence before execution, and stripped from
// result rows after execution (spec.md's placeholder law).
var NO_VALUE Value = noValue{}

// IsNoValue reports whether v is the NO_VALUE placeholder.
func IsNoValue(v Value) bool {
	_, ok := v.(noValue)
	return ok
}

// IsNull reports whether v is either NO_VALUE or the Go nil produced by a
// `null` literal. The two are distinct sentinels (see spec.md's glossary)
// but most conditions treat them alike.
func IsNull(v Value) bool {
	return v == nil || IsNoValue(v)
}

func FormatValue(v Value) string {
	if IsNoValue(v) {
		return "NO_VALUE"
	}
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%v", v)
}
