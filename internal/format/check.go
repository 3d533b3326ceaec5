package format

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"tensa/internal/ast"
	"tensa/internal/parser"
	"tensa/internal/source"
)

// CheckRoundTrip formats prog, re-parses the result and reports whether the
// new AST equals the old one with spans ignored.
func CheckRoundTrip(prog *ast.Program) (ok bool, msg string) {
	if prog == nil {
		return false, "fmt-check: no program"
	}
	text := Program(prog)
	again, err := parser.ParseString(text)
	if err != nil {
		return false, "fmt-check: reparse failed: " + err.Error()
	}
	if !cmp.Equal(prog.Stmts, again.Stmts, cmpopts.IgnoreTypes(source.Span{})) {
		return false, "fmt-check: statements differ after round-trip"
	}
	return true, "fmt-check: OK"
}

// Changed reports whether src differs from the canonical rendering of prog.
func Changed(src []byte, prog *ast.Program) bool {
	return string(src) != Program(prog)
}
