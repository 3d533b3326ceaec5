package codegen

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tensa/internal/ast"
	"tensa/internal/diag"
	"tensa/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseString(src)
	require.NoError(t, err)
	return prog
}

func TestGenerateStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "zeros",
			src:  "[2 x 3; 0];",
			want: "_ = tensor . Zeros [ float32 ] ( tensor . Shape { 2 , 3 } , backend ) ;",
		},
		{
			name: "ones",
			src:  "[4; 1; i64];",
			want: "_ = tensor . Ones [ int64 ] ( tensor . Shape { 4 } , backend ) ;",
		},
		{
			name: "full",
			src:  "[2 x 2; 7; f64];",
			want: "_ = tensor . Full [ float64 ] ( tensor . Shape { 2 , 2 } , 7 , backend ) ;",
		},
		{
			name: "full bool",
			src:  "[3; 5; bool];",
			want: "_ = tensor . Full [ bool ] ( tensor . Shape { 3 } , true , backend ) ;",
		},
		{
			name: "range",
			src:  "[0..10];",
			want: "_ = tensor . Arange [ int64 ] ( 0 , 10 , backend ) ;",
		},
		{
			name: "stepped range",
			src:  "[2..20;2];",
			want: "_ = tensor . ArangeStep [ int64 ] ( 2 , 20 , 2 , backend ) ;",
		},
		{
			name: "assign and use",
			src:  "a = [2 x 2; 0]; a * a;",
			want: "a := tensor . Zeros [ float32 ] ( tensor . Shape { 2 , 2 } , backend ) ; " +
				"_ = a * a ; _ = a ;",
		},
		{
			name: "rebinding",
			src:  "a = [1..2]; a = a;",
			want: "a := tensor . Arange [ int64 ] ( 1 , 2 , backend ) ; a = a ; _ = a ;",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frags, err := Generate(mustParse(t, tt.src), DefaultTarget())
			require.NoError(t, err)
			assert.Equal(t, tt.want, frags.String())
		})
	}
}

func TestGenerateMethodOperators(t *testing.T) {
	target := DefaultTarget()
	target.Operators = OperatorsMethods
	frags, err := Generate(mustParse(t, "a = [2 x 2; 1]; a * a * a;"), target)
	require.NoError(t, err)
	assert.Contains(t, frags.String(), "_ = a . MatMul ( a ) . MatMul ( a ) ;")
}

func TestGenerateIgnoresTypeErrors(t *testing.T) {
	// rank 1 times rank 2 does not type check but still lowers
	_, err := Generate(mustParse(t, "[0..4] * [2 x 2; 0];"), DefaultTarget())
	require.NoError(t, err)
}

func TestGenerateFragmentSpans(t *testing.T) {
	src := "a = [2 x 3; 5];\n[1..7; 2];"
	frags, err := Generate(mustParse(t, src), DefaultTarget())
	require.NoError(t, err)
	bounds := 0
	for _, f := range frags {
		switch f.Text {
		case "a", "5", "3", "2", "1":
			assert.Equal(t, f.Text, src[f.Span.Start:f.Span.End])
		case "7":
			bounds++
			assert.Equal(t, "7", src[f.Span.Start:f.Span.End])
		}
	}
	assert.Equal(t, 1, bounds)
}

func TestGenerateFatalErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
		text string
	}{
		{"empty shape", "[; 4];", diag.GenEmptyShape, "[; 4]"},
		{"device name", "backend = [1; 1];", diag.GenReservedName, "backend"},
		{"package alias", "a = tensor;", diag.GenReservedName, "tensor"},
		{"main", "x = [1; 1]; main = x;", diag.GenReservedName, "main"},
		{"operand", "a = [2 x 2; 1];\nb = a * [2 x 2; 0] * main;", diag.GenReservedName, "main"},
		{"first reserved operand wins", "tensor * backend;", diag.GenReservedName, "tensor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(mustParse(t, tt.src), DefaultTarget())
			require.Error(t, err)
			var gerr *Error
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, tt.code, gerr.Code)
			assert.Equal(t, tt.text, tt.src[gerr.Span.Start:gerr.Span.End])
			assert.Equal(t, tt.code, gerr.Diagnostic().Code)
		})
	}
}

func TestCompileFormatsMain(t *testing.T) {
	out, err := Compile(mustParse(t, "a = [2 x 3; 0];\nb = [3 x 2; 1];\na * b;"), DefaultTarget())
	require.NoError(t, err)
	want := `// Code generated by tensa. DO NOT EDIT.

package main

import (
	"github.com/born-ml/born/backend/cpu"
	tensor "github.com/born-ml/born/tensor"
)

func main() {
	backend := cpu.New()
	a := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
	b := tensor.Ones[float32](tensor.Shape{3, 2}, backend)
	_ = a * b
	_ = a
	_ = b
	_ = backend
}
`
	assert.Equal(t, want, string(out))
}

func TestCompileEmptyProgram(t *testing.T) {
	out, err := Compile(mustParse(t, ""), DefaultTarget())
	require.NoError(t, err)
	assert.NotContains(t, string(out), "born-ml/born/tensor")
	assert.Contains(t, string(out), "backend := cpu.New()")
}

func TestPrintRejectsKeywordIdentifier(t *testing.T) {
	src := "x = [1; 1];\nfunc = [2; 2];"
	_, err := Compile(mustParse(t, src), DefaultTarget())
	require.Error(t, err)

	var perr *PrintError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "func", src[perr.Span.Start:perr.Span.End])
	assert.Equal(t, diag.GenMalformedOutput, perr.Diagnostic().Code)
	assert.True(t, strings.HasPrefix(perr.Error(), "generated code is not valid Go: "))
	assert.Contains(t, string(perr.Source), "func :=")
}

func TestFragmentAt(t *testing.T) {
	frags := Fragments{{Text: "a"}, {Text: ":="}, {Text: "b"}}
	frags[0].Span.End = 1
	frags[2].Span.Start, frags[2].Span.End = 5, 6
	body, offsets := layout(frags)
	assert.Equal(t, "a := b", body)
	assert.Equal(t, []int{0, 2, 5}, offsets)

	assert.Equal(t, frags[0].Span, fragmentAt(frags, offsets, -3))
	assert.Equal(t, frags[1].Span, fragmentAt(frags, offsets, 3))
	assert.Equal(t, frags[2].Span, fragmentAt(frags, offsets, 5))
	assert.Equal(t, frags[2].Span, fragmentAt(frags, offsets, 100))
}

func TestTargetValidate(t *testing.T) {
	require.NoError(t, DefaultTarget().Validate())

	bad := DefaultTarget()
	bad.Package = "not a path"
	assert.ErrorContains(t, bad.Validate(), "target package")

	bad = DefaultTarget()
	bad.Zeros = "1zeros"
	assert.ErrorContains(t, bad.Validate(), "zeros constructor")

	bad = DefaultTarget()
	bad.Device = "cpu.New("
	assert.ErrorContains(t, bad.Validate(), "device expression")

	bad = DefaultTarget()
	bad.Operators = "prefix"
	assert.ErrorContains(t, bad.Validate(), "unknown operator style")

	bad = DefaultTarget()
	bad.Operators = OperatorsMethods
	delete(bad.Methods, "-")
	assert.ErrorContains(t, bad.Validate(), "operator -")

	aliased := DefaultTarget()
	aliased.Alias = "tz"
	assert.Equal(t, "tz", aliased.PackageAlias())
	assert.Equal(t, "cpu", aliased.BackendAlias())
}
