package planner

import "github.com/inferenceql/iqlgo/ir"

// rewriteOrJoins extends every OrJoinClause's Bound list with the free,
// non-generated variables its subclauses reference (spec.md §4.5.2,
// invariant 5: "every or_join's bound list must include every free
// variable its subclauses depend on that was not itself gensym'd"). This
// runs once, after the whole select_expr's Fragment has been assembled, so
// it sees every or_join the clause compiler produced regardless of which
// compile* function built it.
func rewriteOrJoins(clauses []ir.Clause) []ir.Clause {
	out := make([]ir.Clause, len(clauses))
	for i, cl := range clauses {
		out[i] = rewriteClause(cl)
	}
	return out
}

func rewriteClause(cl ir.Clause) ir.Clause {
	oj, ok := cl.(ir.OrJoinClause)
	if !ok {
		return cl
	}
	bound := map[ir.Var]bool{}
	for _, v := range oj.Bound {
		bound[v] = true
	}
	newSubs := make([][]ir.Clause, len(oj.Subclauses))
	for i, sub := range oj.Subclauses {
		newSubs[i] = rewriteOrJoins(sub)
		for _, v := range freeVars(newSubs[i]) {
			if v == ir.DB || isGenerated(v) || bound[v] {
				continue
			}
			bound[v] = true
			oj.Bound = append(oj.Bound, v)
		}
	}
	oj.Subclauses = newSubs
	return oj
}

func isGenerated(v ir.Var) bool {
	return len(v) >= len(ir.GeneratedPrefix) && string(v[:len(ir.GeneratedPrefix)]) == ir.GeneratedPrefix
}

// freeVars collects every variable a clause list reads before it is bound
// by an earlier clause in the same list. Read positions are a
// PatternClause's Entity and variable Value, a predicate/ground/get_else/
// pull's source variables, and a nested or_join's bound variables. A
// predicate/ground/get_else/pull's Result, and a PatternClause's Entity,
// count as bound for the clauses after them.
func freeVars(clauses []ir.Clause) []ir.Var {
	locallyBound := map[ir.Var]bool{}
	free := []ir.Var{}
	seen := map[ir.Var]bool{}
	markFree := func(v ir.Var) {
		if v == "" || locallyBound[v] || seen[v] {
			return
		}
		seen[v] = true
		free = append(free, v)
	}
	for _, cl := range clauses {
		switch c := cl.(type) {
		case ir.PatternClause:
			markFree(c.Entity)
			if c.Value.IsVar {
				markFree(c.Value.Var)
			}
			locallyBound[c.Entity] = true
		case ir.PredicateClause:
			markTerm(c.Fn, markFree)
			for _, a := range c.Args {
				markTerm(a, markFree)
			}
			if c.Result != "" {
				locallyBound[c.Result] = true
			}
		case ir.GroundClause:
			markTerm(c.Value, markFree)
			locallyBound[c.Result] = true
		case ir.GetElseClause:
			markFree(c.Entity)
			markTerm(c.Default, markFree)
			locallyBound[c.Result] = true
		case ir.PullClause:
			markFree(c.Entity)
			locallyBound[c.Result] = true
		case ir.OrJoinClause:
			for _, v := range c.Bound {
				markFree(v)
			}
		}
	}
	return free
}

func markTerm(t ir.Term, mark func(ir.Var)) {
	if t.IsVar {
		mark(t.Var)
	}
}
