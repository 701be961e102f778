package value

// Row is an attribute→value map, the runtime form of a relation tuple.
// cdb represents a tuple as a positional []any keyed by a catalog column
// index (vm/vm.go's registers plus catalog.CdbType.VarPosition); rows here
// are attribute-keyed because the IR addresses columns by symbolic name, not
// position, so a map is the natural carrier.
type Row map[Symbol]Value

// Get returns the value bound to attr, or NO_VALUE if the row has no such
// attribute at all (as opposed to an attribute explicitly bound to
// NO_VALUE, which Get returns unchanged).
func (r Row) Get(attr Symbol) Value {
	if v, ok := r[attr]; ok {
		return v
	}
	return NO_VALUE
}

// Clone returns a shallow copy of r. Evaluation never mutates a Row in
// place; every binding step produces a new Row via Clone plus assignment so
// earlier bindings (e.g. an outer query's row while evaluating a subquery)
// stay intact.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// With returns a copy of r with attr bound to v.
func (r Row) With(attr Symbol, v Value) Row {
	out := r.Clone()
	out[attr] = v
	return out
}

// AddPlaceholders returns a copy of r with NO_VALUE inserted for every
// attribute in columns that r does not already have a binding for. This is
// the placeholder law from spec.md's glossary: "Before execution the driver
// unions every row's keys with the relation's declared columns and inserts
// NO_VALUE for any missing cells."
func AddPlaceholders(r Row, columns []Symbol) Row {
	out := r.Clone()
	for _, c := range columns {
		if _, ok := out[c]; !ok {
			out[c] = NO_VALUE
		}
	}
	return out
}

// StripNoValue returns a copy of r with every NO_VALUE-bound attribute
// removed. Applied to result rows after execution, undoing AddPlaceholders.
func StripNoValue(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		if !IsNoValue(v) {
			out[k] = v
		}
	}
	return out
}

// StripAttrs returns a copy of r with the named attributes removed
// regardless of value. Used to strip private bookkeeping attributes such as
// db_id and iql_type from result rows.
func StripAttrs(r Row, attrs ...Symbol) Row {
	drop := make(map[Symbol]bool, len(attrs))
	for _, a := range attrs {
		drop[a] = true
	}
	out := make(Row, len(r))
	for k, v := range r {
		if !drop[k] {
			out[k] = v
		}
	}
	return out
}
