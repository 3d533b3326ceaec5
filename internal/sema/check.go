// Package sema infers tensor and scalar types for a parsed program and
// reports multiplication errors.
//
// Checking never stops at the first problem: every statement is visited in
// order and all findings are returned. An expression whose type cannot be
// determined (for instance an unbound variable) simply has no type and stops
// inference of the expression that contains it.
package sema

import (
	"strconv"

	"tensa/internal/ast"
	"tensa/internal/diag"
	"tensa/internal/trace"
	"tensa/internal/types"
)

// Options configure a checking pass.
type Options struct {
	// Reporter receives a diagnostic for every TypeError as it is found.
	Reporter diag.Reporter
	// Tracer receives node-level points; ParentSpan anchors them.
	Tracer     trace.Tracer
	ParentSpan uint64
}

// Result stores what the checker learned about a program.
type Result struct {
	Errors    []TypeError
	Symbols   *SymbolTable
	ExprTypes map[ast.Expr]types.Type
}

// Diagnostics converts Errors into diagnostics in discovery order.
func (r Result) Diagnostics() []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Diagnostic()
	}
	return out
}

// TypeOf returns the inferred type of e, nil if it has none.
func (r Result) TypeOf(e ast.Expr) types.Type {
	return r.ExprTypes[e]
}

// Check type checks prog. It never modifies the AST.
func Check(prog *ast.Program, opts Options) Result {
	c := newChecker(NewSymbolTable(), opts)
	if prog != nil {
		for _, st := range prog.Stmts {
			c.checkStmt(st.Value)
		}
	}
	return Result{
		Errors:    c.errors,
		Symbols:   c.symbols,
		ExprTypes: c.exprTypes,
	}
}

// InferExpr infers a single expression against table without binding
// anything. table may be nil.
func InferExpr(expr ast.Expr, table *SymbolTable) (types.Type, []TypeError) {
	if table == nil {
		table = NewSymbolTable()
	}
	c := newChecker(table, Options{})
	ty := c.infer(expr)
	return ty, c.errors
}

type checker struct {
	symbols   *SymbolTable
	errors    []TypeError
	exprTypes map[ast.Expr]types.Type
	opts      Options
}

func newChecker(table *SymbolTable, opts Options) *checker {
	return &checker{
		symbols:   table,
		exprTypes: make(map[ast.Expr]types.Type),
		opts:      opts,
	}
}

func (c *checker) checkStmt(st ast.Stmt) {
	switch st := st.(type) {
	case *ast.ExprStmt:
		c.infer(st.X.Value)
	case *ast.AssignStmt:
		ty := c.infer(st.RHS.Value)
		if ty == nil {
			// без типа имя не связывается
			c.point("assignment without type", st.LHS.Value)
			return
		}
		c.symbols.Bind(st.LHS.Value, ty, st.RHS.Span)
		c.point("bind", st.LHS.Value+": "+ty.String())
	}
}

func (c *checker) report(err TypeError) {
	c.errors = append(c.errors, err)
	if c.opts.Reporter != nil {
		c.opts.Reporter.Report(err.Diagnostic())
	}
	c.point("type error", err.Error())
}

func (c *checker) point(name, detail string) {
	trace.Point(c.opts.Tracer, trace.ScopeNode, name, detail, c.opts.ParentSpan)
}

func rangeLen(r *ast.RangeTensor) int {
	step := int64(r.StepOrDefault())
	if step == 0 {
		return 0
	}
	n := (int64(r.Stop.Value) - int64(r.Start.Value)) / step
	if n < 0 {
		return 0
	}
	return int(n)
}

func describeRange(r *ast.RangeTensor) string {
	return strconv.Itoa(int(r.Start.Value)) + ".." + strconv.Itoa(int(r.Stop.Value))
}
