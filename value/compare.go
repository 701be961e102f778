package value

import "fmt"

// Comparator orders two values, returning a negative number if a < b, zero
// if equal, and positive if a > b. Used by ORDER BY and by the `<`/`>`/`<=`
// `/>=` predicate builtins. Grounded on cdb's planner ordering support
// (planner/select.go sorts by column value) generalized from fixed SQL
// scalar types to the dynamic Value universe.
type Comparator func(a, b Value) int

// Ascending orders by natural order: numbers by magnitude, strings and
// symbols lexically, bools false < true. NO_VALUE sorts last, so that sparse
// result rows do not interleave with present ones.
func Ascending(a, b Value) int {
	if IsNoValue(a) && IsNoValue(b) {
		return 0
	}
	if IsNoValue(a) {
		return 1
	}
	if IsNoValue(b) {
		return -1
	}
	af, aIsNum := asFloat(a)
	bf, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// Descending is the reverse of Ascending.
func Descending(a, b Value) int {
	return -Ascending(a, b)
}

func asFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Equal reports whether a and b denote the same value under the engine's
// equality semantics: nil and NO_VALUE equal each other, numeric values
// compare by magnitude across int/float, and everything else compares by
// its fmt %v rendering (so a Symbol equals a string with the same text).
func Equal(a, b Value) bool {
	if IsNull(a) && IsNull(b) {
		return true
	}
	af, aIsNum := asFloat(a)
	bf, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		return af == bf
	}
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

// Predicate is a named binary comparison over values, the runtime form of a
// predicate_expr node (spec.md §4.4).
type Predicate func(a, b Value) bool

// Predicates is the builtin predicate table keyed by surface operator text.
var Predicates = map[string]Predicate{
	"=":  Equal,
	"<>": func(a, b Value) bool { return !Equal(a, b) },
	"!=": func(a, b Value) bool { return !Equal(a, b) },
	"<":  func(a, b Value) bool { return Ascending(a, b) < 0 },
	">":  func(a, b Value) bool { return Ascending(a, b) > 0 },
	"<=": func(a, b Value) bool { return Ascending(a, b) <= 0 },
	">=": func(a, b Value) bool { return Ascending(a, b) >= 0 },
}
