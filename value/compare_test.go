package value

import "testing"

func TestAscendingNumeric(t *testing.T) {
	if Ascending(1, 2) >= 0 {
		t.Fatalf("expected 1 < 2")
	}
	if Ascending(2.5, 2) <= 0 {
		t.Fatalf("expected 2.5 > 2")
	}
	if Ascending(3, 3) != 0 {
		t.Fatalf("expected 3 == 3")
	}
}

func TestAscendingNoValueSortsLast(t *testing.T) {
	if Ascending(NO_VALUE, 1) <= 0 {
		t.Fatalf("expected NO_VALUE to sort after any value")
	}
	if Ascending(1, NO_VALUE) >= 0 {
		t.Fatalf("expected NO_VALUE to sort after any value")
	}
}

func TestDescendingIsReverseOfAscending(t *testing.T) {
	if Descending(1, 2) <= 0 {
		t.Fatalf("expected descending(1,2) > 0")
	}
}

func TestEqualCrossesNumericTypes(t *testing.T) {
	if !Equal(1, 1.0) {
		t.Fatalf("expected int 1 to equal float 1.0")
	}
	if Equal("a", "b") {
		t.Fatalf("expected a != b")
	}
}

func TestPredicatesTable(t *testing.T) {
	cases := []struct {
		op   string
		a, b Value
		want bool
	}{
		{"=", 1, 1, true},
		{"<>", 1, 2, true},
		{"<", 1, 2, true},
		{">", 2, 1, true},
		{"<=", 2, 2, true},
		{">=", 2, 2, true},
	}
	for _, c := range cases {
		t.Run(c.op, func(t *testing.T) {
			pred, ok := Predicates[c.op]
			if !ok {
				t.Fatalf("no predicate registered for %q", c.op)
			}
			if got := pred(c.a, c.b); got != c.want {
				t.Fatalf("%v %s %v = %v, want %v", c.a, c.op, c.b, got, c.want)
			}
		})
	}
}
