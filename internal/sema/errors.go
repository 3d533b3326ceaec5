package sema

import (
	"fmt"
	"strconv"
	"strings"

	"tensa/internal/ast"
	"tensa/internal/diag"
	"tensa/internal/source"
	"tensa/internal/types"
)

// TypeError is a non-fatal finding of the checker.
type TypeError interface {
	error
	Code() diag.Code
	Diagnostic() diag.Diagnostic
}

// IncompatibleDataTypesError reports operands whose dtypes cannot be combined.
type IncompatibleDataTypesError struct {
	LHS, RHS         types.DType
	LHSSpan, RHSSpan source.Span
}

func (e *IncompatibleDataTypesError) Error() string {
	return fmt.Sprintf("data types %s and %s cannot be combined", e.LHS, e.RHS)
}

func (e *IncompatibleDataTypesError) Code() diag.Code { return diag.TypIncompatibleDataTypes }

func (e *IncompatibleDataTypesError) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code(), e.LHSSpan, e.Error()).
		WithLabel("a value of this data type").
		WithNote(e.RHSSpan, "cannot be combined with a value of this data type")
}

// CannotMultiplyError reports tensor shapes that do not line up for a
// batched matrix product.
type CannotMultiplyError struct {
	LHS, RHS         types.Shape
	LHSSpan, RHSSpan source.Span
}

func (e *CannotMultiplyError) Error() string {
	return fmt.Sprintf("cannot multiply tensor of shape %s with tensor of shape %s",
		formatShape(e.LHS), formatShape(e.RHS))
}

func (e *CannotMultiplyError) Code() diag.Code { return diag.TypCannotMultiply }

func (e *CannotMultiplyError) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code(), e.LHSSpan, e.Error()).
		WithLabel("this shape").
		WithNote(e.RHSSpan, "cannot be multiplied with this shape")
}

// UnsupportedOperatorError marks operators the checker has no rules for.
type UnsupportedOperatorError struct {
	Op   ast.BinaryOp
	Span source.Span
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("operator %s is not supported by the type checker", e.Op.Token())
}

func (e *UnsupportedOperatorError) Code() diag.Code { return diag.FutUnsupportedOperator }

func (e *UnsupportedOperatorError) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code(), e.Span, e.Error()).WithLabel("only '*' is checked")
}

func formatShape(s types.Shape) string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
