// Package parser turns tensa source text into an ast.Program.
//
// The grammar is written with a small set of ordered-choice combinators
// (comb.go) working directly on the text; there is no separate lexer.
// Parsing is all-or-nothing: a malformed program yields an *Error and no AST.
package parser

import (
	"tensa/internal/ast"
	"tensa/internal/source"
)

// Parse parses the content of file. Spans in the result refer to file.ID.
func Parse(file *source.File) (*ast.Program, error) {
	return parse(string(file.Content), file.ID)
}

// ParseString parses src as an anonymous file with ID 0.
func ParseString(src string) (*ast.Program, error) {
	return parse(src, 0)
}

func parse(src string, id source.FileID) (*ast.Program, error) {
	s := newState(src, id)
	prog, _, ok := program(s, 0)
	if !ok {
		return nil, s.err()
	}
	return prog, nil
}
