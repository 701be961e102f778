package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inferenceql/iqlgo/value"
)

func rowDB(rows ...value.Row) []value.Row { return rows }

func TestRunPatternClauseBindsVarAttrAcrossRows(t *testing.T) {
	db := rowDB(
		value.Row{"iql_type": value.Symbol("row"), "x": int64(1)},
		value.Row{"iql_type": value.Symbol("row"), "x": int64(2)},
	)
	rowVar := Var("?e")
	xVar := Var("?x")
	p := Plan{
		Query: Query{
			Find: []Var{xVar},
			Keys: []value.Symbol{"x"},
			In:   []Var{DB},
			Where: []Clause{
				PatternClause{Entity: rowVar, Attr: "iql_type", Value: ConstTerm(value.Symbol("row"))},
				PatternClause{Entity: rowVar, Attr: "x", Value: VarTerm(xVar)},
			},
		},
		Inputs: []value.Value{db},
	}
	out, err := Run(p)
	require.NoError(t, err)
	require.Len(t, out, 2)
	got := []value.Value{out[0]["x"], out[1]["x"]}
	assert.ElementsMatch(t, []value.Value{int64(1), int64(2)}, got)
}

func TestRunPatternClauseConstantFiltersNonMatchingRows(t *testing.T) {
	db := rowDB(
		value.Row{"iql_type": value.Symbol("row"), "x": int64(1)},
		value.Row{"iql_type": value.Symbol("other"), "x": int64(2)},
	)
	rowVar := Var("?e")
	xVar := Var("?x")
	p := Plan{
		Query: Query{
			Find: []Var{xVar},
			Keys: []value.Symbol{"x"},
			In:   []Var{DB},
			Where: []Clause{
				PatternClause{Entity: rowVar, Attr: "iql_type", Value: ConstTerm(value.Symbol("row"))},
				PatternClause{Entity: rowVar, Attr: "x", Value: VarTerm(xVar)},
			},
		},
		Inputs: []value.Value{db},
	}
	out, err := Run(p)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0]["x"])
}

func TestRunGetElseReadsDefaultForMissingAttr(t *testing.T) {
	entity := Var("?e")
	result := Var("?r")
	p := Plan{
		Query: Query{
			Find: []Var{result},
			Keys: []value.Symbol{"r"},
			In:   []Var{DB},
			Where: []Clause{
				GroundClause{Value: ConstTerm(value.Row{"y": int64(9)}), Result: entity},
				GetElseClause{Entity: entity, Attr: "x", Default: ConstTerm(value.NO_VALUE), Result: result},
			},
		},
		Inputs: []value.Value{[]value.Row{}},
	}
	out, err := Run(p)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, value.IsNoValue(out[0]["r"]))
}

func TestRunPullStarCopiesWholeRow(t *testing.T) {
	entity := Var("?e")
	result := Var("?r")
	p := Plan{
		Query: Query{
			Find: []Var{result},
			Keys: []value.Symbol{"r"},
			In:   []Var{DB},
			Where: []Clause{
				GroundClause{Value: ConstTerm(value.Row{"x": int64(1), "y": int64(2)}), Result: entity},
				PullClause{Star: true, Entity: entity, Result: result},
			},
		},
		Inputs: []value.Value{[]value.Row{}},
	}
	out, err := Run(p)
	require.NoError(t, err)
	require.Len(t, out, 1)
	pulled, ok := out[0]["r"].(value.Row)
	require.True(t, ok)
	assert.Equal(t, int64(1), pulled["x"])
	assert.Equal(t, int64(2), pulled["y"])
}

func TestRunPullNamedAttrsFillsNoValueForMissing(t *testing.T) {
	entity := Var("?e")
	result := Var("?r")
	p := Plan{
		Query: Query{
			Find: []Var{result},
			Keys: []value.Symbol{"r"},
			In:   []Var{DB},
			Where: []Clause{
				GroundClause{Value: ConstTerm(value.Row{"x": int64(1)}), Result: entity},
				PullClause{Attrs: []value.Symbol{"x", "z"}, Entity: entity, Result: result},
			},
		},
		Inputs: []value.Value{[]value.Row{}},
	}
	out, err := Run(p)
	require.NoError(t, err)
	require.Len(t, out, 1)
	pulled := out[0]["r"].(value.Row)
	assert.Equal(t, int64(1), pulled["x"])
	assert.True(t, value.IsNoValue(pulled["z"]))
}

func TestRunPredicateClauseFiltersWithoutResult(t *testing.T) {
	entity := Var("?e")
	always := Func(func(args []value.Value) (value.Value, error) { return true, nil })
	never := Func(func(args []value.Value) (value.Value, error) { return false, nil })
	p := Plan{
		Query: Query{
			Find: []Var{entity},
			In:   []Var{DB},
			Where: []Clause{
				GroundClause{Value: ConstTerm(value.Row{}), Result: entity},
				PredicateClause{Fn: ConstTerm(always)},
			},
		},
		Inputs: []value.Value{[]value.Row{}},
	}
	out, err := Run(p)
	require.NoError(t, err)
	assert.Len(t, out, 1)

	p.Query.Where[1] = PredicateClause{Fn: ConstTerm(never)}
	out, err = Run(p)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRunOrJoinUnionsBranchResults(t *testing.T) {
	entity := Var("?e")
	p := Plan{
		Query: Query{
			Find: []Var{entity},
			Keys: []value.Symbol{"e"},
			In:   []Var{DB},
			Where: []Clause{
				OrJoinClause{
					Bound: []Var{entity},
					Subclauses: [][]Clause{
						{GroundClause{Value: ConstTerm(int64(1)), Result: entity}},
						{GroundClause{Value: ConstTerm(int64(2)), Result: entity}},
					},
				},
			},
		},
		Inputs: []value.Value{[]value.Row{}},
	}
	out, err := Run(p)
	require.NoError(t, err)
	require.Len(t, out, 2)
	got := []value.Value{out[0]["e"], out[1]["e"]}
	assert.ElementsMatch(t, []value.Value{int64(1), int64(2)}, got)
}

func TestRunKeyedResultsProjectByAlias(t *testing.T) {
	xv := Var("?x")
	p := Plan{
		Query: Query{
			Find:  []Var{xv},
			Keys:  []value.Symbol{"a"},
			In:    []Var{DB},
			Where: []Clause{GroundClause{Value: ConstTerm(int64(5)), Result: xv}},
		},
		Inputs: []value.Value{[]value.Row{}},
	}
	out, err := Run(p)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(5), out[0]["a"])
}

func TestRunRejectsMismatchedInputsLength(t *testing.T) {
	p := Plan{
		Query:  Query{In: []Var{DB, "?extra"}},
		Inputs: []value.Value{[]value.Row{}},
	}
	_, err := Run(p)
	require.Error(t, err)
}
