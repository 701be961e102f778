// compiler is composed of a lexer, a parser, and a literal reader. These
// modules work in order to turn an IQL-SQL string into a tagged parse tree
// (see node.go) and then into plain Go values (see literal.go). The parse
// tree is what the validator and the planner both consume.
package compiler
