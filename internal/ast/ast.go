// Package ast defines the syntax tree produced by the parser.
//
// Statements and expressions are closed sum types: every variant is a pointer
// type implementing Stmt or Expr, and every payload that came from source text
// is wrapped in source.Spanned so diagnostics can point back at it.
package ast

import (
	"tensa/internal/source"
	"tensa/internal/types"
)

// Program is an ordered list of statements; order is emission order.
type Program struct {
	Stmts []source.Spanned[Stmt]
	Span  source.Span
}

// Stmt is implemented by *ExprStmt and *AssignStmt.
type Stmt interface {
	stmtNode()
}

// ExprStmt evaluates an expression for emission only.
type ExprStmt struct {
	X source.Spanned[Expr]
}

// AssignStmt binds LHS to the value of RHS for the rest of the program.
type AssignStmt struct {
	LHS source.Spanned[string]
	RHS source.Spanned[Expr]
}

func (*ExprStmt) stmtNode()   {}
func (*AssignStmt) stmtNode() {}

// Expr is implemented by *FillTensor, *RangeTensor, *Variable and *Binary.
type Expr interface {
	exprNode()
}

// FillTensor is a tensor of Shape filled with Fill, e.g. [2 x 3; 0].
type FillTensor struct {
	Fill  source.Spanned[int32]
	Shape []source.Spanned[int]
	// nil means types.DefaultDType
	DataType *source.Spanned[types.DType]
}

// RangeTensor is a 1-D integer tensor over [Start, Stop), e.g. [0..10; 2].
type RangeTensor struct {
	Start source.Spanned[int32]
	Stop  source.Spanned[int32]
	// nil means a step of 1
	Step *source.Spanned[int32]
}

// Variable references a previously assigned name.
type Variable struct {
	Name string
}

// Binary combines two operands. The grammar only produces Mul.
type Binary struct {
	LHS source.Spanned[Expr]
	RHS source.Spanned[Expr]
	Op  source.Spanned[BinaryOp]
}

func (*FillTensor) exprNode()  {}
func (*RangeTensor) exprNode() {}
func (*Variable) exprNode()    {}
func (*Binary) exprNode()      {}

// ResolvedDType returns the declared dtype or the default.
func (f *FillTensor) ResolvedDType() types.DType {
	if f.DataType == nil {
		return types.DefaultDType
	}
	return f.DataType.Value
}

// Dims returns the shape without spans.
func (f *FillTensor) Dims() types.Shape {
	dims := make(types.Shape, len(f.Shape))
	for i, d := range f.Shape {
		dims[i] = d.Value
	}
	return dims
}

// StepOrDefault returns the step value, 1 when absent.
func (r *RangeTensor) StepOrDefault() int32 {
	if r.Step == nil {
		return 1
	}
	return r.Step.Value
}
