// stattype names the three statistical types that drive best-effort input
// coercion: binary, categorical, and gaussian (spec.md's non-goals: "no type
// system beyond three statistical types... used only by the row coercer").
// Grounded on cdb's coltype package, which plays the analogous role for its
// column type constants (catalog.CdbType's CTInt/CTVar/CTStr), generalized
// from a closed SQL-scalar set to the three variable kinds a GPM exposes.
package stattype

// These constants name a statistical type. Unlike coltype's CT
// constants, which order by parse precedence, these carry no ordering — a
// statistical type is metadata attached to a column, not a type-inference
// lattice position.
const (
	Unknown = iota
	Binary
	Categorical
	Gaussian
)

// ST is the exported alias for a statistical type constant, mirroring
// coltype.CT.
type ST = int

// Named maps a statistical type's lowercase name to its constant, as would
// appear in a column-type declaration alongside a model.
func Named(name string) (ST, bool) {
	switch name {
	case "binary":
		return Binary, true
	case "categorical":
		return Categorical, true
	case "gaussian":
		return Gaussian, true
	}
	return Unknown, false
}

// Name returns the lowercase name of a statistical type constant.
func Name(t ST) string {
	switch t {
	case Binary:
		return "binary"
	case Categorical:
		return "categorical"
	case Gaussian:
		return "gaussian"
	}
	return "unknown"
}
