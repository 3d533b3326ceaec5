package ast

import "tensa/internal/source"

// Inspect walks expr depth-first, left operand before right. If f returns
// false the children of the current node are skipped.
func Inspect(expr source.Spanned[Expr], f func(source.Spanned[Expr]) bool) {
	if expr.Value == nil || !f(expr) {
		return
	}
	if bin, ok := expr.Value.(*Binary); ok {
		Inspect(bin.LHS, f)
		Inspect(bin.RHS, f)
	}
}

// Variables returns the names referenced by expr in source order.
func Variables(expr source.Spanned[Expr]) []source.Spanned[string] {
	var out []source.Spanned[string]
	Inspect(expr, func(e source.Spanned[Expr]) bool {
		if v, ok := e.Value.(*Variable); ok {
			out = append(out, source.At(v.Name, e.Span))
		}
		return true
	})
	return out
}
