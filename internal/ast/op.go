package ast

import "fmt"

// BinaryOp is the closed set of binary operators.
type BinaryOp uint8

const (
	Add BinaryOp = iota + 1
	Sub
	Mul
)

// Token returns the operator spelling shared by the source language and the
// generated Go code.
func (op BinaryOp) Token() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	default:
		return "?"
	}
}

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Mul:
		return "Mul"
	default:
		return fmt.Sprintf("BinaryOp(%d)", uint8(op))
	}
}
