package parser

import (
	"fmt"
	"strconv"

	"tensa/internal/ast"
	"tensa/internal/source"
	"tensa/internal/types"
)

// Terminals. Every token is padded so whitespace is insignificant around it.
var (
	digits = takeWhile("digit", isDigit, isDigit)
	word   = takeWhile("identifier", isIdentStart, isIdentPart)

	int32Lit = Padded(MapWithSpan(TryMap(digits, parseInt32), source.At[int32]))
	dimLit   = Padded(MapWithSpan(TryMap(digits, parseDim), source.At[int]))
	ident    = Padded(MapWithSpan(word, source.At[string]))
	dtypeLit = Padded(MapWithSpan(TryMap(word, types.ParseDType), source.At[types.DType]))

	lbrack = Padded(Just("["))
	rbrack = Padded(Just("]"))
	semi   = Padded(Just(";"))
	times  = Padded(Just("x"))
	dots   = Padded(Just(".."))
	star   = Padded(Just("*"))
	assign = Padded(Just("="))
)

func parseInt32(text string) (int32, error) {
	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("integer literal %s does not fit in int32", text)
	}
	return int32(v), nil
}

func parseDim(text string) (int, error) {
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("dimension %s is too large", text)
	}
	return v, nil
}

// fill_tensor := '[' uint ('x' uint)* ';' uint (';' dtype)? ']'
func fillTensor(s *state, pos int) (ast.Expr, int, bool) {
	start := pos
	if _, pos, ok := lbrack(s, pos); ok {
		shape, pos, _ := SeparatedBy(dimLit, times)(s, pos)
		if _, pos, ok := semi(s, pos); ok {
			if fill, pos, ok := int32Lit(s, pos); ok {
				dt, pos, _ := Optional(Preceded(semi, dtypeLit))(s, pos)
				if _, pos, ok := rbrack(s, pos); ok {
					return &ast.FillTensor{Fill: fill, Shape: shape, DataType: dt}, pos, true
				}
			}
		}
	}
	return nil, start, false
}

// range_tensor := '[' uint '..' uint (';' uint)? ']'
func rangeTensor(s *state, pos int) (ast.Expr, int, bool) {
	start := pos
	if _, pos, ok := lbrack(s, pos); ok {
		if lo, pos, ok := int32Lit(s, pos); ok {
			if _, pos, ok := dots(s, pos); ok {
				if hi, pos, ok := int32Lit(s, pos); ok {
					step, pos, _ := Optional(Preceded(semi, int32Lit))(s, pos)
					if _, pos, ok := rbrack(s, pos); ok {
						return &ast.RangeTensor{Start: lo, Stop: hi, Step: step}, pos, true
					}
				}
			}
		}
	}
	return nil, start, false
}

func variable(s *state, pos int) (ast.Expr, int, bool) {
	name, end, ok := word(s, pos)
	if !ok {
		return nil, pos, false
	}
	return &ast.Variable{Name: name}, end, true
}

// atom := fill_tensor / range_tensor / ident
//
// The order is part of the grammar: both literals start with '[' and
// fill_tensor is always attempted first.
var atom = Padded(MapWithSpan(
	OneOf[ast.Expr](fillTensor, rangeTensor, variable),
	source.At[ast.Expr],
))

// expr := atom ('*' atom)*, folded to the left.
func expr(s *state, pos int) (source.Spanned[ast.Expr], int, bool) {
	lhs, pos, ok := atom(s, pos)
	if !ok {
		return lhs, pos, false
	}
	for {
		op, mid, ok := star(s, pos)
		if !ok {
			return lhs, pos, true
		}
		rhs, next, ok := atom(s, mid)
		if !ok {
			return lhs, pos, true
		}
		lhs = source.At[ast.Expr](&ast.Binary{
			LHS: lhs,
			RHS: rhs,
			Op:  source.At(ast.Mul, op),
		}, lhs.Span.Cover(rhs.Span))
		pos = next
	}
}

// expr_stmt := expr ';'
func exprStmt(s *state, pos int) (ast.Stmt, int, bool) {
	x, pos, ok := expr(s, pos)
	if !ok {
		return nil, pos, false
	}
	if _, end, ok := semi(s, pos); ok {
		return &ast.ExprStmt{X: x}, end, true
	}
	return nil, pos, false
}

// assign_stmt := ident '=' expr ';'
func assignStmt(s *state, pos int) (ast.Stmt, int, bool) {
	start := pos
	if name, pos, ok := ident(s, pos); ok {
		if _, pos, ok := assign(s, pos); ok {
			if rhs, pos, ok := expr(s, pos); ok {
				if _, pos, ok := semi(s, pos); ok {
					return &ast.AssignStmt{LHS: name, RHS: rhs}, pos, true
				}
			}
		}
	}
	return nil, start, false
}

// stmt := expr_stmt / assign_stmt
var stmt = Padded(MapWithSpan(OneOf[ast.Stmt](exprStmt, assignStmt), source.At[ast.Stmt]))

// program := stmt* EOF
func program(s *state, pos int) (*ast.Program, int, bool) {
	stmts, pos, _ := Many(stmt)(s, skipSpace(s.src, pos))
	if _, end, ok := End()(s, pos); ok {
		return &ast.Program{Stmts: stmts, Span: s.span(0, len(s.src))}, end, true
	}
	return nil, pos, false
}
