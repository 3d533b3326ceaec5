// Package codegen lowers a tensa program into Go source that builds the
// declared tensors through a tensor runtime described by Target.
//
// Generate produces a flat fragment stream, one fragment per Go token, each
// remembering the source span it came from. Print wraps the stream in a
// main function, checks that the result parses and formats it. Generation
// does not look at type checking results.
package codegen

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"tensa/internal/ast"
	"tensa/internal/diag"
	"tensa/internal/source"
	"tensa/internal/types"
)

// Fragment is one emitted Go token.
type Fragment struct {
	Text string
	Span source.Span
}

// Fragments is the token stream of the generated statements.
type Fragments []Fragment

func (fs Fragments) String() string {
	var sb strings.Builder
	for i, f := range fs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// Error is a fatal generation failure tied to a source span.
type Error struct {
	Code diag.Code
	Span source.Span
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

// Diagnostic converts the failure for rendering.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.NewError(e.Code, e.Span, e.Msg)
}

// Generate lowers every statement of prog in order.
func Generate(prog *ast.Program, target Target) (Fragments, error) {
	g := &generator{
		target:   target,
		alias:    target.PackageAlias(),
		reserved: target.reserved(),
		declared: make(map[string]bool),
	}
	for _, st := range prog.Stmts {
		if err := g.stmt(st); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	// объявленные, но не использованные переменные не компилируются
	for _, name := range g.order {
		g.emit(name.Span, "_", "=", name.Value, ";")
	}
	return g.out, nil
}

// Compile chains Generate and Print.
func Compile(prog *ast.Program, target Target) ([]byte, error) {
	frags, err := Generate(prog, target)
	if err != nil {
		return nil, err
	}
	return Print(frags, target)
}

type generator struct {
	target   Target
	alias    string
	reserved map[string]struct{}
	declared map[string]bool
	order    []source.Spanned[string]
	out      Fragments
}

func (g *generator) emitText(t source.Spanned[string]) { g.emit(t.Span, t.Value) }

func formatInt32(v int32) string { return strconv.FormatInt(int64(v), 10) }

func (g *generator) emit(sp source.Span, texts ...string) {
	for _, t := range texts {
		g.out = append(g.out, Fragment{Text: t, Span: sp})
	}
}

func (g *generator) checkName(name source.Spanned[string]) error {
	if _, ok := g.reserved[name.Value]; ok {
		return &Error{
			Code: diag.GenReservedName,
			Span: name.Span,
			Msg:  "name " + strconv.Quote(name.Value) + " is reserved by the generated code",
		}
	}
	return nil
}

// checkNames validates every name a statement binds or reads, in source
// order, before any of it is emitted.
func (g *generator) checkNames(st ast.Stmt) error {
	var names []source.Spanned[string]
	switch s := st.(type) {
	case *ast.ExprStmt:
		names = ast.Variables(s.X)
	case *ast.AssignStmt:
		names = append([]source.Spanned[string]{s.LHS}, ast.Variables(s.RHS)...)
	}
	for _, name := range names {
		if err := g.checkName(name); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) stmt(st source.Spanned[ast.Stmt]) error {
	if err := g.checkNames(st.Value); err != nil {
		return err
	}
	switch s := st.Value.(type) {
	case *ast.ExprStmt:
		g.emit(st.Span, "_", "=")
		if err := g.expr(s.X); err != nil {
			return err
		}
		g.emit(st.Span, ";")
	case *ast.AssignStmt:
		if g.declared[s.LHS.Value] {
			g.emit(s.LHS.Span, s.LHS.Value, "=")
		} else {
			g.declared[s.LHS.Value] = true
			g.order = append(g.order, s.LHS)
			g.emit(s.LHS.Span, s.LHS.Value, ":=")
		}
		if err := g.expr(s.RHS); err != nil {
			return err
		}
		g.emit(st.Span, ";")
	default:
		return errors.Errorf("unexpected statement %T", st.Value)
	}
	return nil
}

func (g *generator) expr(e source.Spanned[ast.Expr]) error {
	switch x := e.Value.(type) {
	case *ast.FillTensor:
		return g.fill(x, e.Span)
	case *ast.RangeTensor:
		g.rangeTensor(x, e.Span)
	case *ast.Variable:
		g.emit(e.Span, x.Name)
	case *ast.Binary:
		if err := g.expr(x.LHS); err != nil {
			return err
		}
		if g.target.Operators == OperatorsMethods {
			g.emit(x.Op.Span, ".", g.target.Methods[x.Op.Value.Token()], "(")
			if err := g.expr(x.RHS); err != nil {
				return err
			}
			g.emit(x.Op.Span, ")")
			return nil
		}
		g.emit(x.Op.Span, x.Op.Value.Token())
		return g.expr(x.RHS)
	default:
		return errors.Errorf("unexpected expression %T", e.Value)
	}
	return nil
}

func (g *generator) fill(f *ast.FillTensor, sp source.Span) error {
	if len(f.Shape) == 0 {
		return &Error{
			Code: diag.GenEmptyShape,
			Span: sp,
			Msg:  "tensor shape must have at least one dimension",
		}
	}

	ctor, withValue := g.target.Full, true
	switch f.Fill.Value {
	case 0:
		ctor, withValue = g.target.Zeros, false
	case 1:
		ctor, withValue = g.target.Ones, false
	}
	g.emit(sp, g.alias, ".", ctor, "[", types.GoTypeName(f.ResolvedDType()), "]", "(")

	g.emit(sp, g.alias, ".", "Shape", "{")
	for i, d := range f.Shape {
		if i > 0 {
			g.emit(d.Span, ",")
		}
		g.emitText(source.Map(d, strconv.Itoa))
	}
	g.emit(sp, "}", ",")

	if withValue {
		g.emit(f.Fill.Span, fillLiteral(f.Fill.Value, f.ResolvedDType()), ",")
	}
	g.emit(sp, g.target.DeviceVar, ")")
	return nil
}

// fillLiteral spells v so that it converts to dt; bool tensors take any
// non-zero fill as true.
func fillLiteral(v int32, dt types.DType) string {
	if dt == types.Bool {
		return strconv.FormatBool(v != 0)
	}
	return strconv.FormatInt(int64(v), 10)
}

func (g *generator) rangeTensor(r *ast.RangeTensor, sp source.Span) {
	ctor := g.target.Arange
	if r.Step != nil {
		ctor = g.target.ArangeStep
	}
	g.emit(sp, g.alias, ".", ctor, "[", types.GoTypeName(types.RangeDType), "]", "(")
	bounds := []source.Spanned[int32]{r.Start, r.Stop}
	if r.Step != nil {
		bounds = append(bounds, *r.Step)
	}
	for _, b := range bounds {
		g.emitText(source.Map(b, formatInt32))
		g.emit(b.Span, ",")
	}
	g.emit(sp, g.target.DeviceVar, ")")
}
