package compiler

import "strings"

// Node is a parse tree node. Every non-terminal production in the IQL-SQL
// grammar is represented by a Node carrying a symbolic Tag and an ordered
// list of Children. A child is either another Node (a sub-expression) or a
// Leaf (a terminal token's text, including whitespace).
//
// This mirrors cdb's AST in spirit (compiler/ast.go's Stmt/Expr types) but
// generalizes it to a single tagged-variant shape so the literal reader,
// validator, and evaluator can all dispatch on Tag rather than on a Go type
// switch over dozens of concrete statement/expression structs.
type Node struct {
	Tag      string
	Children []Child
}

// Child is either a sub-Node or a terminal Leaf.
type Child struct {
	Node *Node
	Leaf string
	// IsLeaf distinguishes a Leaf child (a terminal token's text) from a Node
	// child even when Leaf is the empty string.
	IsLeaf bool
}

// NodeChild wraps a Node as a Child.
func NodeChild(n *Node) Child { return Child{Node: n} }

// LeafChild wraps a terminal string as a Child.
func LeafChild(s string) Child { return Child{Leaf: s, IsLeaf: true} }

// NewNode builds a Node from a tag and children.
func NewNode(tag string, children ...Child) *Node {
	return &Node{Tag: tag, Children: children}
}

// ChildrenAll returns every child, leaves included.
func (n *Node) ChildrenAll() []Child {
	return n.Children
}

// ChildNodes returns the subset of children that are Nodes, excluding
// whitespace and other leaf children.
func (n *Node) ChildNodes() []*Node {
	out := []*Node{}
	for _, c := range n.Children {
		if !c.IsLeaf && c.Node != nil {
			out = append(out, c.Node)
		}
	}
	return out
}

// OnlyChild returns the single Node child when there is exactly one, else
// nil. Used by the evaluator's default dispatch rule (spec.md §4.4/§9).
func (n *Node) OnlyChild() *Node {
	cs := n.ChildNodes()
	if len(cs) == 1 {
		return cs[0]
	}
	return nil
}

// OnlyLeaf returns the single leaf child's text when the node has exactly
// one child and it is a leaf, else "", false.
func (n *Node) OnlyLeaf() (string, bool) {
	if len(n.Children) == 1 && n.Children[0].IsLeaf {
		return n.Children[0].Leaf, true
	}
	return "", false
}

// Get returns the first child Node with the given tag, or nil.
func (n *Node) Get(tag string) *Node {
	for _, c := range n.ChildNodes() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// GetAll returns every child Node with the given tag, in order.
func (n *Node) GetAll(tag string) []*Node {
	out := []*Node{}
	for _, c := range n.ChildNodes() {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// GetIn walks a path of tags, descending through Get at each step.
func (n *Node) GetIn(tags []string) *Node {
	cur := n
	for _, t := range tags {
		if cur == nil {
			return nil
		}
		cur = cur.Get(t)
	}
	return cur
}

// Branch reports whether n has any Node children (as opposed to being a
// leaf-only production).
func (n *Node) Branch() bool {
	return len(n.ChildNodes()) > 0
}

// HasLeaf reports whether n has a direct leaf child with exactly the text s.
// Used for the handful of productions that record a keyword as a bare leaf
// rather than wrapping it in its own tagged Node, e.g. select_expr's
// optional leading EXPLAIN [QUERY PLAN].
func (n *Node) HasLeaf(s string) bool {
	for _, c := range n.Children {
		if c.IsLeaf && c.Leaf == s {
			return true
		}
	}
	return false
}

// Text returns the leaf text directly under n, concatenated in order. Used
// for productions that are a single terminal (identifiers, numbers,
// operators).
func (n *Node) Text() string {
	var sb strings.Builder
	for _, c := range n.Children {
		if c.IsLeaf {
			sb.WriteString(c.Leaf)
		}
	}
	return sb.String()
}

// Unparse produces a readable source-text rendering of n by joining every
// leaf in the subtree, in order, with single spaces. The parser does not
// retain original whitespace, so this is not byte-exact with the input, but
// it is enough to name the offending construct in an error message (spec.md
// §4.1 "Unparse").
func Unparse(n *Node) string {
	leaves := []string{}
	collectLeaves(n, &leaves)
	return strings.Join(leaves, " ")
}

func collectLeaves(n *Node, out *[]string) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		if c.IsLeaf {
			if c.Leaf != "" {
				*out = append(*out, c.Leaf)
			}
		} else {
			collectLeaves(c.Node, out)
		}
	}
}
