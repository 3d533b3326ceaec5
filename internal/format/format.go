package format

import (
	"strconv"
	"strings"

	"tensa/internal/ast"
	"tensa/internal/types"
)

// Program renders prog with one statement per line.
func Program(prog *ast.Program) string {
	var sb strings.Builder
	for _, st := range prog.Stmts {
		writeStmt(&sb, st.Value)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Stmt renders a single statement including its terminator.
func Stmt(st ast.Stmt) string {
	var sb strings.Builder
	writeStmt(&sb, st)
	return sb.String()
}

// Expr renders a single expression.
func Expr(e ast.Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeStmt(sb *strings.Builder, st ast.Stmt) {
	switch st := st.(type) {
	case *ast.ExprStmt:
		writeExpr(sb, st.X.Value)
	case *ast.AssignStmt:
		sb.WriteString(st.LHS.Value)
		sb.WriteString(" = ")
		writeExpr(sb, st.RHS.Value)
	}
	sb.WriteByte(';')
}

func writeExpr(sb *strings.Builder, e ast.Expr) {
	switch e := e.(type) {
	case *ast.FillTensor:
		sb.WriteByte('[')
		for i, d := range e.Shape {
			if i > 0 {
				sb.WriteString(" x ")
			}
			sb.WriteString(strconv.Itoa(d.Value))
		}
		sb.WriteString("; ")
		sb.WriteString(strconv.FormatInt(int64(e.Fill.Value), 10))
		if e.DataType != nil {
			sb.WriteString("; ")
			sb.WriteString(types.ShortName(e.DataType.Value))
		}
		sb.WriteByte(']')
	case *ast.RangeTensor:
		sb.WriteByte('[')
		sb.WriteString(strconv.FormatInt(int64(e.Start.Value), 10))
		sb.WriteString("..")
		sb.WriteString(strconv.FormatInt(int64(e.Stop.Value), 10))
		if e.Step != nil {
			sb.WriteString("; ")
			sb.WriteString(strconv.FormatInt(int64(e.Step.Value), 10))
		}
		sb.WriteByte(']')
	case *ast.Variable:
		sb.WriteString(e.Name)
	case *ast.Binary:
		writeExpr(sb, e.LHS.Value)
		sb.WriteByte(' ')
		sb.WriteString(e.Op.Value.Token())
		sb.WriteByte(' ')
		writeExpr(sb, e.RHS.Value)
	}
}
