package compiler

import (
	"reflect"
	"testing"
)

type lexTC struct {
	sql      string
	expected []token
}

func tok(tt tokenType, v string) token {
	return token{tokenType: tt, value: v}
}

// stripPos drops pos from every token so test expectations don't have to
// hand-compute byte offsets.
func stripPos(toks []token) []token {
	out := make([]token, len(toks))
	for i, t := range toks {
		out[i] = token{tokenType: t.tokenType, value: t.value}
	}
	return out
}

func TestLexSelect(t *testing.T) {
	cases := []lexTC{
		{
			sql: "SELECT * FROM data",
			expected: []token{
				tok(tkKeyword, "SELECT"),
				tok(tkWhitespace, " "),
				tok(tkOperator, "*"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "FROM"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "data"),
			},
		},
		{
			sql: "select * from data",
			expected: []token{
				tok(tkKeyword, "SELECT"),
				tok(tkWhitespace, " "),
				tok(tkOperator, "*"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "FROM"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "data"),
			},
		},
		{
			sql: "SELECT x FROM data WHERE x >= 1.5",
			expected: []token{
				tok(tkKeyword, "SELECT"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "x"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "FROM"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "data"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "WHERE"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "x"),
				tok(tkWhitespace, " "),
				tok(tkOperator, ">="),
				tok(tkWhitespace, " "),
				tok(tkNumeric, "1.5"),
			},
		},
		{
			sql: "SELECT x FROM data WHERE x <> 1",
			expected: []token{
				tok(tkKeyword, "SELECT"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "x"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "FROM"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "data"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "WHERE"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "x"),
				tok(tkWhitespace, " "),
				tok(tkOperator, "<>"),
				tok(tkWhitespace, " "),
				tok(tkNumeric, "1"),
			},
		},
		{
			sql: "SELECT DENSITY OF x = 1.0 UNDER m AS p",
			expected: []token{
				tok(tkKeyword, "SELECT"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "DENSITY"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "OF"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "x"),
				tok(tkWhitespace, " "),
				tok(tkOperator, "="),
				tok(tkWhitespace, " "),
				tok(tkNumeric, "1.0"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "UNDER"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "m"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "AS"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "p"),
			},
		},
		{
			sql: "INSERT INTO data VALUES (1, 'gud')",
			expected: []token{
				tok(tkKeyword, "INSERT"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "INTO"),
				tok(tkWhitespace, " "),
				tok(tkIdentifier, "data"),
				tok(tkWhitespace, " "),
				tok(tkKeyword, "VALUES"),
				tok(tkWhitespace, " "),
				tok(tkSeparator, "("),
				tok(tkNumeric, "1"),
				tok(tkSeparator, ","),
				tok(tkWhitespace, " "),
				tok(tkLiteral, "'gud'"),
				tok(tkSeparator, ")"),
			},
		},
	}
	for _, c := range cases {
		t.Run(c.sql, func(t *testing.T) {
			got := stripPos(NewLexer(c.sql).Lex())
			if !reflect.DeepEqual(got, c.expected) {
				t.Errorf("expected %#v got %#v", c.expected, got)
			}
		})
	}
}

func TestIsKeyword(t *testing.T) {
	for _, kw := range []string{"select", "SELECT", "Generate", "under", "CONSTRAINED"} {
		if !isKeyword(kw) {
			t.Errorf("expected %q to be a keyword", kw)
		}
	}
	if isKeyword("data") {
		t.Errorf("expected data to not be a keyword")
	}
}
