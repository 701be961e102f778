package planner

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferenceql/iqlgo/compiler"
	"github.com/inferenceql/iqlgo/db"
	"github.com/inferenceql/iqlgo/env"
	"github.com/inferenceql/iqlgo/gpm"
	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/value"
)

// stubGPM returns a fixed logpdf for every call, recording nothing; enough
// for planner tests, which only care that a logpdf call reaches the model.
type stubGPM struct{ logpdf float64 }

func (g stubGPM) Logpdf(targets, constraints map[value.Symbol]value.Value) (float64, error) {
	return g.logpdf, nil
}

func (g stubGPM) Simulate(targets map[value.Symbol]bool, constraints map[value.Symbol]value.Value) (value.Row, error) {
	return value.Row{}, nil
}

func testEnv(rows []value.Row, models map[value.Symbol]gpm.GPM) env.Env {
	data := value.NewRelation([]value.Symbol{"x", "y"}, rows)
	return env.Extend(map[value.Symbol]*value.Relation{"data": data}, models)
}

// runCompiled builds the row database from rows and runs a compiled plan
// against it, the same substitution executor.RunSelect performs at
// Plan.Inputs[0], without pulling in the executor package (which would be
// an import cycle from planner's perspective by way of eval.RunSelect).
func runCompiled(t *testing.T, c *Compiled, rows []value.Row) []value.Row {
	t.Helper()
	dbRows := db.Build(rows, nil)
	c.Plan.Inputs[0] = dbRows
	out, err := ir.Run(c.Plan)
	require.NoError(t, err)
	return out
}

func TestCompileSelectStarFindsWholeRow(t *testing.T) {
	rows := []value.Row{{"x": int64(1), "y": int64(2)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT * FROM data")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Empty(t, c.Plan.Query.Keys)
	assert.Len(t, c.Plan.Query.Find, 1)

	out := runCompiled(t, c, rows)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0]["x"])
	assert.Equal(t, int64(2), out[0]["y"])
}

func TestCompileColumnSelectionProjectsAndAliases(t *testing.T) {
	rows := []value.Row{{"x": int64(1), "y": int64(2)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT x AS a, y FROM data")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []value.Symbol{"a", "y"}, c.Plan.Query.Keys)

	out := runCompiled(t, c, rows)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0]["a"])
	assert.Equal(t, int64(2), out[0]["y"])
}

func TestCompileMissingColumnReadsNoValue(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT y FROM data")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)

	out := runCompiled(t, c, rows)
	require.Len(t, out, 1)
	assert.True(t, value.IsNoValue(out[0]["y"]))
}

func TestCompileWhereEqualityFiltersRows(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}, {"x": int64(2)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT x FROM data WHERE x = 2")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)

	out := runCompiled(t, c, rows)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0]["x"])
}

func TestCompileWhereOrJoinUnionsBranches(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}, {"x": int64(2)}, {"x": int64(3)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT x FROM data WHERE x = 1 OR x = 3")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)

	out := runCompiled(t, c, rows)
	got := []int64{}
	for _, r := range out {
		got = append(got, r["x"].(int64))
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, []int64{1, 3}, got)
}

func TestCompileDensityClauseUsesDefaultModel(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}}
	models := map[value.Symbol]gpm.GPM{"model": stubGPM{logpdf: -2.5}}
	e := testEnv(rows, models)
	n, err := compiler.Parse("SELECT DENSITY OF x=1 FROM data")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []value.Symbol{"density"}, c.Plan.Query.Keys)

	out := runCompiled(t, c, rows)
	require.Len(t, out, 1)
	// DENSITY surfaces exp(logpdf), the same as PROBABILITY (spec.md §4.5's
	// logpdf_clause row: "invokes logpdf then exp").
	assert.InDelta(t, math.Exp(-2.5), out[0]["density"], 1e-9)
}

func TestCompileProbabilityClauseExponentiates(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}}
	models := map[value.Symbol]gpm.GPM{"model": stubGPM{logpdf: 0}}
	e := testEnv(rows, models)
	n, err := compiler.Parse("SELECT PROBABILITY OF x=1 FROM data")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []value.Symbol{"probability"}, c.Plan.Query.Keys)

	out := runCompiled(t, c, rows)
	require.Len(t, out, 1)
	assert.InDelta(t, 1.0, out[0]["probability"], 1e-9)
}

func TestCompileOrderByDescending(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}, {"x": int64(3)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT x FROM data ORDER BY x DESC")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, value.Symbol("x"), c.OrderByColumn)
	require.NotNil(t, c.OrderByCmp)
	assert.Negative(t, c.OrderByCmp(int64(3), int64(1)))
}

func TestCompileLimit(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT x FROM data LIMIT 5")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 5, c.Limit)
}

func TestCompileNoLimitDefaultsNegative(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT x FROM data")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, -1, c.Limit)
}

func TestCompileAddingClauseName(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT x FROM data ADDING extra")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, value.Symbol("extra"), c.Adding)
}

func TestCompileRowIDSelection(t *testing.T) {
	rows := []value.Row{{"x": int64(1)}, {"x": int64(2)}}
	e := testEnv(rows, nil)
	n, err := compiler.Parse("SELECT rowid, x FROM data")
	require.NoError(t, err)

	c, err := Compile(n, e, env.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []value.Symbol{"rowid", "x"}, c.Plan.Query.Keys)

	out := runCompiled(t, c, rows)
	require.Len(t, out, 2)
	assert.Equal(t, int64(0), out[0]["rowid"])
	assert.Equal(t, int64(1), out[1]["rowid"])
}
