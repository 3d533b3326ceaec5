package sema

import (
	"tensa/internal/ast"
	"tensa/internal/source"
	"tensa/internal/types"
)

func (c *checker) infer(e ast.Expr) types.Type {
	ty := c.inferExpr(e)
	if ty != nil {
		c.exprTypes[e] = ty
	}
	return ty
}

func (c *checker) inferExpr(e ast.Expr) types.Type {
	switch e := e.(type) {
	case *ast.FillTensor:
		return types.NewTensor(e.Dims(), e.ResolvedDType())
	case *ast.RangeTensor:
		n := rangeLen(e)
		if e.StepOrDefault() <= 0 || n == 0 {
			c.point("empty range", describeRange(e))
		}
		return types.NewTensor(types.Shape{n}, types.RangeDType)
	case *ast.Variable:
		entry, ok := c.symbols.Lookup(e.Name)
		if !ok {
			c.point("unbound variable", e.Name)
			return nil
		}
		return entry.Type
	case *ast.Binary:
		return c.inferBinary(e)
	}
	return nil
}

// operandSpan is the definition span for bound variables and the use span
// for everything else.
func (c *checker) operandSpan(op source.Spanned[ast.Expr]) source.Span {
	if v, ok := op.Value.(*ast.Variable); ok {
		if entry, ok := c.symbols.Lookup(v.Name); ok {
			return entry.Span
		}
	}
	return op.Span
}

func (c *checker) inferBinary(b *ast.Binary) types.Type {
	if b.Op.Value != ast.Mul {
		c.infer(b.LHS.Value)
		c.infer(b.RHS.Value)
		c.report(&UnsupportedOperatorError{Op: b.Op.Value, Span: b.Op.Span})
		return nil
	}

	lhs := c.infer(b.LHS.Value)
	if lhs == nil {
		return nil
	}
	rhs := c.infer(b.RHS.Value)
	if rhs == nil {
		return nil
	}
	lhsSpan, rhsSpan := c.operandSpan(b.LHS), c.operandSpan(b.RHS)

	switch l := lhs.(type) {
	case *types.Tensor:
		switch r := rhs.(type) {
		case *types.Tensor:
			return c.matmul(l, lhsSpan, r, rhsSpan)
		case *types.Scalar:
			return c.scale(l, r, lhsSpan, rhsSpan)
		}
	case *types.Scalar:
		switch r := rhs.(type) {
		case *types.Tensor:
			return c.scale(r, l, lhsSpan, rhsSpan)
		case *types.Scalar:
			if l.DType != r.DType {
				c.report(&IncompatibleDataTypesError{LHS: l.DType, RHS: r.DType, LHSSpan: lhsSpan, RHSSpan: rhsSpan})
				return nil
			}
			return types.NewScalar(l.DType)
		}
	}
	return nil
}

// scale multiplies a tensor by a scalar in either operand order. The error
// names the scalar dtype first whatever side it was on.
func (c *checker) scale(t *types.Tensor, s *types.Scalar, lhsSpan, rhsSpan source.Span) types.Type {
	if s.DType != t.DType {
		c.report(&IncompatibleDataTypesError{LHS: s.DType, RHS: t.DType, LHSSpan: lhsSpan, RHSSpan: rhsSpan})
		return nil
	}
	return types.NewTensor(t.Shape, t.DType)
}
