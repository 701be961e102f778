// literal reads literal sub-trees of a parse tree into plain Go values.
// Analogous to cdb's vm reading an IntLit/StringLit AST node into a register
// value (vm/vm.go), generalized from two literal kinds to the full literal
// grammar: bool, int, nat, float, string, simple_symbol, null, and the
// value-list family.
package compiler

import (
	"fmt"
	"strconv"

	"github.com/inferenceql/iqlgo/value"
)

// ReadLiteral maps a literal sub-tree to a value.Value. It returns an error
// on a tag it does not recognize as a literal production; callers should
// only invoke it on nodes known (by grammar position) to be literals.
func ReadLiteral(n *Node) (value.Value, error) {
	switch n.Tag {
	case TagBool:
		s, _ := n.OnlyLeaf()
		return s == "TRUE", nil
	case TagInt, TagNat:
		s, _ := n.OnlyLeaf()
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("reading %s literal %q: %w", n.Tag, s, err)
		}
		return i, nil
	case TagFloat:
		s, _ := n.OnlyLeaf()
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("reading float literal %q: %w", s, err)
		}
		return f, nil
	case TagString:
		s, _ := n.OnlyLeaf()
		return s, nil
	case TagSimpleSymbol, TagName:
		s, _ := n.OnlyLeaf()
		return value.Symbol(s), nil
	case TagNull:
		return nil, nil
	case TagValueList:
		return ReadValueList(n)
	case TagValueListsFull:
		return ReadValueListsFull(n)
	case TagValueListsSparse:
		return ReadValueListsSparse(n)
	case TagRelationValue:
		return ReadRelationValue(n)
	}
	return nil, fmt.Errorf("literal: unrecognized tag %q", n.Tag)
}

// ReadValueList reads a value_list node into an ordered []value.Value.
func ReadValueList(n *Node) ([]value.Value, error) {
	out := make([]value.Value, 0, len(n.ChildNodes()))
	for _, c := range n.ChildNodes() {
		v, err := readExprLiteral(c)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// readExprLiteral reads an expr node (ref | literal) as a literal value. A
// bare `ref` is read as the Symbol it names rather than resolved against an
// environment; resolution against a bound environment happens later, in the
// expression evaluator, not here.
func readExprLiteral(n *Node) (value.Value, error) {
	if n.Tag == TagRef {
		inner := n.OnlyChild()
		if inner == nil {
			return nil, fmt.Errorf("literal: malformed ref node %s", Unparse(n))
		}
		s, _ := inner.OnlyLeaf()
		return value.Symbol(s), nil
	}
	return ReadLiteral(n)
}

// ReadValueListsFull reads a value_lists_full node: an ordered sequence of
// value-lists (spec.md §4.2).
func ReadValueListsFull(n *Node) ([][]value.Value, error) {
	out := make([][]value.Value, 0, len(n.ChildNodes()))
	for _, c := range n.ChildNodes() {
		vl, err := ReadValueList(c)
		if err != nil {
			return nil, err
		}
		out = append(out, vl)
	}
	return out, nil
}

// ReadValueListsSparse reads a value_lists_sparse node: a list of
// (index, value_list) pairs that denote a dense sequence of length
// max(index)+1, with unfilled positions the empty sequence (spec.md §4.2 /
// §8's sparse value-list laws).
func ReadValueListsSparse(n *Node) ([][]value.Value, error) {
	type entry struct {
		idx int
		vl  []value.Value
	}
	entries := []entry{}
	maxIdx := -1
	for _, c := range n.GetAll(TagSparseEntry) {
		natNode := c.Get(TagNat)
		if natNode == nil {
			return nil, fmt.Errorf("literal: sparse_entry missing index: %s", Unparse(c))
		}
		idxLit, err := ReadLiteral(natNode)
		if err != nil {
			return nil, err
		}
		idx := int(idxLit.(int64))
		vlNode := c.Get(TagValueList)
		if vlNode == nil {
			return nil, fmt.Errorf("literal: sparse_entry missing value_list: %s", Unparse(c))
		}
		vl, err := ReadValueList(vlNode)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{idx: idx, vl: vl})
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	out := make([][]value.Value, maxIdx+1)
	for i := range out {
		out[i] = []value.Value{}
	}
	for _, e := range entries {
		out[e.idx] = e.vl
	}
	return out, nil
}

// ReadRelationValue reads a relation_value node `(col₁, …) VALUES …` into a
// value.Relation: rows are zip(cols, values), carrying Columns = cols
// (spec.md §4.2).
func ReadRelationValue(n *Node) (*value.Relation, error) {
	varList := n.Get(TagVariableList)
	if varList == nil {
		return nil, fmt.Errorf("literal: relation_value missing variable_list: %s", Unparse(n))
	}
	cols := make([]value.Symbol, 0, len(varList.ChildNodes()))
	for _, c := range varList.ChildNodes() {
		s, _ := c.OnlyLeaf()
		cols = append(cols, value.Symbol(s))
	}
	vlf := n.Get(TagValueListsFull)
	if vlf == nil {
		return nil, fmt.Errorf("literal: relation_value missing value_lists_full: %s", Unparse(n))
	}
	valueLists, err := ReadValueListsFull(vlf)
	if err != nil {
		return nil, err
	}
	rows := make([]value.Row, 0, len(valueLists))
	for _, vl := range valueLists {
		row := value.Row{}
		for i, col := range cols {
			if i < len(vl) {
				row[col] = vl[i]
			} else {
				row[col] = value.NO_VALUE
			}
		}
		rows = append(rows, row)
	}
	return value.NewRelation(cols, rows), nil
}
