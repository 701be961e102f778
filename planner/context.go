package planner

import (
	"fmt"

	"github.com/inferenceql/iqlgo/env"
	"github.com/inferenceql/iqlgo/ir"
)

// ctx carries the per-compilation state the clause compiler threads through
// every compile* function: the environment expressions resolve against, the
// default-table/default-model config, and a gensym counter.
//
// Grounded on cdb's planner.planner struct (planner/planner.go), which
// threads a *catalog.Catalog and a register allocator through its compile
// functions the same way; gensym here plays the role cdb's register
// allocator plays, minting fresh identifiers instead of fresh register
// numbers.
type ctx struct {
	env env.Env
	cfg env.Config
	n   int
}

// gensym mints a fresh, compiler-generated logic variable. Every variable
// gensym produces carries ir.GeneratedPrefix, so the or_join free-variable
// rewrite (spec.md §4.5.2) never mistakes it for the shared entity variable.
func (c *ctx) gensym() ir.Var {
	c.n++
	return ir.Var(fmt.Sprintf("%s%d", ir.GeneratedPrefix, c.n))
}

// entityVar is the single well-known, non-generated logic variable denoting
// "the current row" that every clause in a compiled SELECT shares.
const entityVar ir.Var = "?e"
