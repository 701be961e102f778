package ir

import (
	"fmt"
	"reflect"

	"github.com/inferenceql/iqlgo/value"
)

// Bindings maps a logic variable to the value it has been bound to within
// one candidate solution.
type Bindings map[Var]value.Value

func (b Bindings) clone() Bindings {
	out := make(Bindings, len(b)+1)
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Run evaluates a Plan's Query against its Inputs and returns the result
// rows (spec.md §4.6's "Results are returned as rows of find-variables").
// With Keys, each result row maps Keys[i] to the value of Find[i]. Without
// Keys, the query must have exactly one find variable, bound to a row, and
// that row is the result row.
func Run(p Plan) ([]value.Row, error) {
	if len(p.Query.In) != len(p.Inputs) {
		return nil, fmt.Errorf("ir: len(query.in)=%d != len(inputs)=%d", len(p.Query.In), len(p.Inputs))
	}
	seed := Bindings{}
	for i, v := range p.Query.In {
		seed[v] = p.Inputs[i]
	}
	sols := []Bindings{seed}
	for _, c := range p.Query.Where {
		var err error
		sols, err = evalClause(c, sols)
		if err != nil {
			return nil, err
		}
	}
	return resultRows(p.Query, sols)
}

func resultRows(q Query, sols []Bindings) ([]value.Row, error) {
	if len(q.Keys) == 0 {
		if len(q.Find) != 1 {
			return nil, fmt.Errorf("ir: query has no keys but %d find variables", len(q.Find))
		}
		out := make([]value.Row, 0, len(sols))
		for _, b := range sols {
			row, ok := b[q.Find[0]].(value.Row)
			if !ok {
				return nil, fmt.Errorf("ir: find variable %s is not a row", q.Find[0])
			}
			out = append(out, row)
		}
		return out, nil
	}
	if len(q.Keys) != len(q.Find) {
		return nil, fmt.Errorf("ir: %d keys but %d find variables", len(q.Keys), len(q.Find))
	}
	out := make([]value.Row, 0, len(sols))
	for _, b := range sols {
		row := value.Row{}
		for i, k := range q.Keys {
			row[k] = b[q.Find[i]]
		}
		out = append(out, row)
	}
	return out, nil
}

func resolveTerm(t Term, b Bindings) (value.Value, error) {
	if !t.IsVar {
		return t.Const, nil
	}
	v, ok := b[t.Var]
	if !ok {
		return nil, fmt.Errorf("ir: unbound variable %s", t.Var)
	}
	return v, nil
}

func evalClause(c Clause, in []Bindings) ([]Bindings, error) {
	switch cl := c.(type) {
	case PatternClause:
		return evalPattern(cl, in)
	case PredicateClause:
		return evalPredicate(cl, in)
	case GroundClause:
		return evalGround(cl, in)
	case GetElseClause:
		return evalGetElse(cl, in)
	case PullClause:
		return evalPull(cl, in)
	case OrJoinClause:
		return evalOrJoin(cl, in)
	}
	return nil, fmt.Errorf("ir: unrecognized clause type %T", c)
}

func evalPattern(c PatternClause, in []Bindings) ([]Bindings, error) {
	out := []Bindings{}
	for _, b := range in {
		dbv, err := resolveTerm(VarTerm(DB), b)
		if err != nil {
			return nil, fmt.Errorf("pattern clause: %w", err)
		}
		rows, ok := dbv.([]value.Row)
		if !ok {
			return nil, fmt.Errorf("pattern clause: datasource is not a row set")
		}
		for _, row := range rows {
			nb := b.clone()
			attrVal := row.Get(c.Attr)
			if c.Value.IsVar {
				if existing, ok := nb[c.Value.Var]; ok {
					if !value.Equal(existing, attrVal) {
						continue
					}
				} else {
					nb[c.Value.Var] = attrVal
				}
			} else if !value.Equal(attrVal, c.Value.Const) {
				continue
			}
			if existing, ok := nb[c.Entity]; ok {
				if er, ok2 := existing.(value.Row); !ok2 || !sameRow(er, row) {
					continue
				}
			}
			nb[c.Entity] = row
			out = append(out, nb)
		}
	}
	return out, nil
}

func sameRow(a, b value.Row) bool {
	aid, aok := a["db_id"]
	bid, bok := b["db_id"]
	if aok && bok {
		return value.Equal(aid, bid)
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func evalPredicate(c PredicateClause, in []Bindings) ([]Bindings, error) {
	out := []Bindings{}
	for _, b := range in {
		fnv, err := resolveTerm(c.Fn, b)
		if err != nil {
			return nil, fmt.Errorf("predicate clause: %w", err)
		}
		fn, ok := fnv.(Func)
		if !ok {
			return nil, fmt.Errorf("predicate clause: %v is not callable", fnv)
		}
		args := make([]value.Value, len(c.Args))
		for i, a := range c.Args {
			v, err := resolveTerm(a, b)
			if err != nil {
				return nil, fmt.Errorf("predicate clause: %w", err)
			}
			args[i] = v
		}
		res, err := fn(args)
		if err != nil {
			return nil, err
		}
		if c.Result == "" {
			truthy, ok := res.(bool)
			if ok && truthy {
				out = append(out, b)
			}
			continue
		}
		nb := b.clone()
		nb[c.Result] = res
		out = append(out, nb)
	}
	return out, nil
}

func evalGround(c GroundClause, in []Bindings) ([]Bindings, error) {
	out := make([]Bindings, 0, len(in))
	for _, b := range in {
		v, err := resolveTerm(c.Value, b)
		if err != nil {
			return nil, fmt.Errorf("ground clause: %w", err)
		}
		nb := b.clone()
		nb[c.Result] = v
		out = append(out, nb)
	}
	return out, nil
}

func evalGetElse(c GetElseClause, in []Bindings) ([]Bindings, error) {
	out := make([]Bindings, 0, len(in))
	for _, b := range in {
		ev, ok := b[c.Entity]
		if !ok {
			return nil, fmt.Errorf("get_else clause: unbound entity %s", c.Entity)
		}
		row, ok := ev.(value.Row)
		if !ok {
			return nil, fmt.Errorf("get_else clause: entity %s is not a row", c.Entity)
		}
		v := row.Get(c.Attr)
		if _, present := row[c.Attr]; !present {
			d, err := resolveTerm(c.Default, b)
			if err != nil {
				return nil, fmt.Errorf("get_else clause: %w", err)
			}
			v = d
		}
		nb := b.clone()
		nb[c.Result] = v
		out = append(out, nb)
	}
	return out, nil
}

func evalPull(c PullClause, in []Bindings) ([]Bindings, error) {
	out := make([]Bindings, 0, len(in))
	for _, b := range in {
		ev, ok := b[c.Entity]
		if !ok {
			return nil, fmt.Errorf("pull clause: unbound entity %s", c.Entity)
		}
		row, ok := ev.(value.Row)
		if !ok {
			return nil, fmt.Errorf("pull clause: entity %s is not a row", c.Entity)
		}
		var pulled value.Row
		if c.Star {
			pulled = row.Clone()
		} else {
			pulled = value.Row{}
			for _, a := range c.Attrs {
				pulled[a] = row.Get(a)
			}
		}
		nb := b.clone()
		nb[c.Result] = pulled
		out = append(out, nb)
	}
	return out, nil
}

func evalOrJoin(c OrJoinClause, in []Bindings) ([]Bindings, error) {
	out := []Bindings{}
	for _, b := range in {
		seed := Bindings{DB: b[DB]}
		for _, v := range c.Bound {
			if val, ok := b[v]; ok {
				seed[v] = val
			}
		}
		for _, sub := range c.Subclauses {
			sols := []Bindings{seed.clone()}
			var err error
			for _, cl := range sub {
				sols, err = evalClause(cl, sols)
				if err != nil {
					return nil, err
				}
			}
			for _, s := range sols {
				nb := b.clone()
				for k, v := range s {
					nb[k] = v
				}
				out = append(out, nb)
			}
		}
	}
	return out, nil
}
