package value

import "github.com/inferenceql/iqlgo/stattype"

// RowStream is a pull-based iterator over rows. It is the laziness
// primitive a `generated_table_expr` needs: GENERATE yields an unbounded
// sequence of simulated rows, and nothing downstream may assume the
// sequence is materializable into a slice before a LIMIT has trimmed it.
//
// cdb has no analog — its planner/generator.go emits pages of rows eagerly
// from a B-tree cursor — so this is new machinery, in cdb's register-minimal
// style: a tiny interface with exactly the methods a consumer needs, mirror
// of how vm/vm.go's cursor wraps pager.go's page iteration.
type RowStream interface {
	// Next returns the next row and true, or a zero Row and false when the
	// stream is exhausted. A RowStream built over GENERATE returns false
	// only when a provider call fails (see ErrStream); otherwise it must be
	// bounded by Take or a consumer that stops pulling.
	Next() (Row, bool)
}

// sliceStream adapts a fixed, already-materialized slice of rows to a
// RowStream.
type sliceStream struct {
	rows []Row
	i    int
}

func NewSliceStream(rows []Row) RowStream {
	return &sliceStream{rows: rows}
}

func (s *sliceStream) Next() (Row, bool) {
	if s.i >= len(s.rows) {
		return nil, false
	}
	r := s.rows[s.i]
	s.i++
	return r, true
}

// generatorStream adapts a generator function to a RowStream. Each call to
// Next invokes gen exactly once; gen itself decides whether there is a next
// row (it always does, for a GENERATE stream: the underlying GPM can always
// simulate again).
type generatorStream struct {
	gen func() Row
}

// NewGeneratorStream builds an unbounded RowStream from a generator
// function. Used by the evaluator's generated_table_expr case to wrap
// repeated ConstrainedGPM.Simulate calls without forcing them eagerly.
func NewGeneratorStream(gen func() Row) RowStream {
	return &generatorStream{gen: gen}
}

func (g *generatorStream) Next() (Row, bool) {
	return g.gen(), true
}

// fallibleGeneratorStream is like generatorStream but its generator may
// fail (a GENERATE stream's Simulate call can hit a provider failure).
// Once gen returns an error, the stream reports exhausted rather than
// propagating the error through Next's signature; callers that care check
// Err afterward via the ErrStream interface.
type fallibleGeneratorStream struct {
	gen func() (Row, error)
	err error
}

// NewFallibleGeneratorStream builds an unbounded RowStream from a generator
// function that may fail, for wrapping a generated_table_expr's repeated
// ConstrainedGPM.Simulate calls.
func NewFallibleGeneratorStream(gen func() (Row, error)) RowStream {
	return &fallibleGeneratorStream{gen: gen}
}

func (g *fallibleGeneratorStream) Next() (Row, bool) {
	if g.err != nil {
		return nil, false
	}
	r, err := g.gen()
	if err != nil {
		g.err = err
		return nil, false
	}
	return r, true
}

// Err returns the error that ended the stream early, or nil if the stream
// simply has not erred (yet, or ever — a plain generatorStream never ends).
func (g *fallibleGeneratorStream) Err() error {
	return g.err
}

// ErrStream is implemented by a RowStream that may end before true
// exhaustion because of an error. Consumers that bound a stream with Take
// should check this afterward to distinguish "ran out" from "failed".
type ErrStream interface {
	Err() error
}

// Take pulls at most n rows from s, materializing them into a slice. This is
// the only place an unbounded RowStream is allowed to terminate: the
// validator requires a LIMIT on any query selecting from a generated table,
// and Take is where that cap is finally enforced.
func Take(s RowStream, n int) []Row {
	out := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		r, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out
}

// Drain pulls every row from a bounded stream into a slice. Calling this on
// an unbounded generatorStream never returns; callers must only use it on
// streams known to terminate (e.g. a sliceStream, or a generatorStream
// already wrapped by a pre-execution LIMIT transform).
func Drain(s RowStream) []Row {
	out := []Row{}
	for {
		r, ok := s.Next()
		if !ok {
			return out
		}
		out = append(out, r)
	}
}

// Relation is an ordered sequence of rows plus a Columns attribute: the
// ordered list of attribute names defining projection order and
// completeness (spec.md's glossary). Rows is nil for a lazily generated
// relation; in that case Stream provides access instead.
type Relation struct {
	Columns []Symbol
	Rows    []Row
	// Stream is set instead of Rows for a relation backed by a
	// generated_table_expr. Materialize forces it into Rows, consuming it.
	Stream RowStream
	// Schema declares the statistical type of some subset of Columns, when
	// the caller supplied one for this relation. A row database built over
	// this relation's Rows uses Schema to drive best-effort pre-coercion
	// (spec.md §6). Nil for a relation with no declared statistical types.
	Schema map[Symbol]stattype.ST
}

// NewRelation builds an eager Relation from a fixed row slice.
func NewRelation(columns []Symbol, rows []Row) *Relation {
	return &Relation{Columns: columns, Rows: rows}
}

// NewStreamRelation builds a lazy Relation backed by an unbounded stream.
func NewStreamRelation(columns []Symbol, stream RowStream) *Relation {
	return &Relation{Columns: columns, Stream: stream}
}

// IsLazy reports whether r is backed by an unmaterialized stream.
func (r *Relation) IsLazy() bool {
	return r.Rows == nil && r.Stream != nil
}

// Materialize forces a lazy relation's stream into Rows, taking at most
// limit rows if limit is non-negative. Calling Materialize with a negative
// limit on a lazy relation is a caller error: the validator must have
// already rejected that query (spec.md §4.3's "generated table without
// limit" rule).
func (r *Relation) Materialize(limit int) {
	if !r.IsLazy() {
		return
	}
	if limit < 0 {
		r.Rows = Drain(r.Stream)
	} else {
		r.Rows = Take(r.Stream, limit)
	}
	r.Stream = nil
}

// WithPlaceholders returns a copy of r with every row padded to the full
// column set via AddPlaceholders. r must already be materialized.
func (r *Relation) WithPlaceholders() *Relation {
	rows := make([]Row, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = AddPlaceholders(row, r.Columns)
	}
	return &Relation{Columns: r.Columns, Rows: rows, Schema: r.Schema}
}
