package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferenceql/iqlgo/ir"
	"github.com/inferenceql/iqlgo/value"
)

func TestBuiltinsIncludesComparatorsAndCoreFuncs(t *testing.T) {
	e := Builtins()
	for _, name := range []value.Symbol{"=", "<>", "!=", "<", ">", "<=", ">=", "not=", "exp", "merge", "logpdf"} {
		_, ok := e[name]
		assert.True(t, ok, "missing builtin %s", name)
	}
}

func TestBuiltinEqualityPredicate(t *testing.T) {
	e := Builtins()
	fn := e["="].(ir.Func)
	out, err := fn([]value.Value{int64(1), int64(1)})
	require.NoError(t, err)
	assert.Equal(t, true, out)

	out, err = fn([]value.Value{int64(1), int64(2)})
	require.NoError(t, err)
	assert.Equal(t, false, out)
}

func TestBuiltinNotEqual(t *testing.T) {
	e := Builtins()
	fn := e["not="].(ir.Func)
	out, err := fn([]value.Value{int64(1), int64(2)})
	require.NoError(t, err)
	assert.Equal(t, true, out)
}

func TestBuiltinExpComputesExponential(t *testing.T) {
	e := Builtins()
	fn := e["exp"].(ir.Func)
	out, err := fn([]value.Value{float64(0)})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out.(float64), 1e-9)
}

func TestBuiltinMergeSecondArgWins(t *testing.T) {
	e := Builtins()
	fn := e["merge"].(ir.Func)
	a := value.Row{"x": int64(1), "y": int64(2)}
	b := value.Row{"x": int64(9)}
	out, err := fn([]value.Value{a, b})
	require.NoError(t, err)
	row := out.(value.Row)
	assert.Equal(t, int64(9), row["x"])
	assert.Equal(t, int64(2), row["y"])
}

func TestBuiltinLogpdfDropsNoValueBindings(t *testing.T) {
	e := Builtins()
	fn := e["logpdf"].(ir.Func)
	g := &stubGPM{}
	targets := value.Row{"x": int64(1), "y": value.NO_VALUE}
	constraints := value.Row{}
	out, err := fn([]value.Value{g, targets, constraints})
	require.NoError(t, err)
	assert.Equal(t, -1.0, out)
	assert.Contains(t, g.seenTargets, value.Symbol("x"))
	assert.NotContains(t, g.seenTargets, value.Symbol("y"))
}

type stubGPM struct {
	seenTargets map[value.Symbol]value.Value
}

func (g *stubGPM) Logpdf(targets, constraints map[value.Symbol]value.Value) (float64, error) {
	g.seenTargets = targets
	return -1.0, nil
}

func (g *stubGPM) Simulate(targets map[value.Symbol]bool, constraints map[value.Symbol]value.Value) (value.Row, error) {
	return value.Row{}, nil
}

func TestExtendMergesTablesAndModelsOverBuiltins(t *testing.T) {
	data := value.NewRelation([]value.Symbol{"x"}, nil)
	e := Extend(map[value.Symbol]*value.Relation{"data": data}, nil)
	got, ok := e["data"].(*value.Relation)
	require.True(t, ok)
	assert.Same(t, data, got)
	_, hasBuiltin := e["="]
	assert.True(t, hasBuiltin)
}

func TestDefaultConfigNamesDataAndModel(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, value.Symbol("data"), cfg.DefaultTable)
	assert.Equal(t, value.Symbol("model"), cfg.DefaultModel)
}
