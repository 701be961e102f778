package value

import "testing"

func TestSliceStream(t *testing.T) {
	rows := []Row{{"x": 1}, {"x": 2}}
	s := NewSliceStream(rows)
	r, ok := s.Next()
	if !ok || r["x"] != 1 {
		t.Fatalf("expected first row x=1 got %v ok=%v", r, ok)
	}
	r, ok = s.Next()
	if !ok || r["x"] != 2 {
		t.Fatalf("expected second row x=2 got %v ok=%v", r, ok)
	}
	if _, ok = s.Next(); ok {
		t.Fatalf("expected stream exhausted")
	}
}

func TestTakeBoundsGeneratorStream(t *testing.T) {
	n := 0
	s := NewGeneratorStream(func() Row {
		n++
		return Row{"n": n}
	})
	rows := Take(s, 3)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows got %d", len(rows))
	}
	if rows[2]["n"] != 3 {
		t.Fatalf("expected third row n=3 got %v", rows[2])
	}
}

func TestRelationMaterializeWithLimit(t *testing.T) {
	n := 0
	rel := NewStreamRelation([]Symbol{"n"}, NewGeneratorStream(func() Row {
		n++
		return Row{"n": n}
	}))
	rel.Materialize(2)
	if rel.IsLazy() {
		t.Fatalf("expected relation to no longer be lazy")
	}
	if len(rel.Rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(rel.Rows))
	}
}

func TestRelationWithPlaceholders(t *testing.T) {
	rel := NewRelation([]Symbol{"x", "y"}, []Row{{"x": 1}})
	out := rel.WithPlaceholders()
	if !IsNoValue(out.Rows[0]["y"]) {
		t.Fatalf("expected y to be NO_VALUE got %v", out.Rows[0]["y"])
	}
}
