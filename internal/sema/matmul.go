package sema

import (
	"tensa/internal/source"
	"tensa/internal/types"
)

// matmul checks a batched matrix product. Both operands need the same dtype
// and the same rank of at least 2; the last axis of lhs must match the
// second-to-last axis of rhs and the leading (batch) axes must hold the same
// number of elements. Batch axes collapse into one leading dimension of the
// result: [batch, lhs[d-2], rhs[d-1]].
func (c *checker) matmul(lhs *types.Tensor, lhsSpan source.Span, rhs *types.Tensor, rhsSpan source.Span) types.Type {
	if lhs.DType != rhs.DType {
		c.report(&IncompatibleDataTypesError{LHS: lhs.DType, RHS: rhs.DType, LHSSpan: lhsSpan, RHSSpan: rhsSpan})
		return nil
	}

	cannot := func() types.Type {
		c.report(&CannotMultiplyError{
			LHS:     lhs.Shape.Clone(),
			RHS:     rhs.Shape.Clone(),
			LHSSpan: lhsSpan,
			RHSSpan: rhsSpan,
		})
		return nil
	}

	if lhs.Rank() < 2 || lhs.Rank() != rhs.Rank() {
		return cannot()
	}

	d := lhs.Rank()
	lhsK, rhsK := lhs.Shape[d-1], rhs.Shape[d-2]
	lhsBatch, rhsBatch := product(lhs.Shape[:d-2]), product(rhs.Shape[:d-2])
	if lhsK != rhsK || lhsBatch != rhsBatch {
		return cannot()
	}

	return types.NewTensor(types.Shape{lhsBatch, lhs.Shape[d-2], rhs.Shape[d-1]}, lhs.DType)
}

func product(dims types.Shape) int {
	return dims.NumElements()
}
