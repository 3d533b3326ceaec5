package format_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"tensa/internal/format"
	"tensa/internal/parser"
	"tensa/internal/source"
)

func TestProgramCanonicalForm(t *testing.T) {
	prog, err := parser.ParseString("x=[2x3;0 ;I64];\ny = x*[0 ..10;2] * [ 5..6 ];  [;4];")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "x = [2 x 3; 0; i64];\n" +
		"y = x * [0..10; 2] * [5..6];\n" +
		"[; 4];\n"
	if got := format.Program(prog); got != want {
		t.Fatalf("Program() =\n%s\nwant\n%s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"[2 x 3; 0];",
		"[0..10];",
		"[2..20;2];",
		"a = [2 x 3; 0]; a * a;",
		"a = [2 x 3 x 4; 1; f64]; b = [2 x 4 x 5; 7; f64]; c = a * b * a;",
		"[;0]; [1 x 0 x 9; 2147483647];",
		"",
	}
	for _, src := range inputs {
		t.Run(src, func(t *testing.T) {
			first, err := parser.ParseString(src)
			if err != nil {
				t.Fatalf("parse original: %v", err)
			}
			text := format.Program(first)
			second, err := parser.ParseString(text)
			if err != nil {
				t.Fatalf("parse formatted %q: %v", text, err)
			}
			if diff := cmp.Diff(first, second, cmpopts.IgnoreTypes(source.Span{})); diff != "" {
				t.Fatalf("round trip changed the AST (-first +second):\n%s", diff)
			}
			if again := format.Program(second); again != text {
				t.Fatalf("formatting is not stable: %q vs %q", text, again)
			}
		})
	}
}

func TestCheckRoundTrip(t *testing.T) {
	prog, err := parser.ParseString("a=[2x2;1;bool];\na*[0..4;2];")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ok, msg := format.CheckRoundTrip(prog); !ok {
		t.Fatalf("CheckRoundTrip: %s", msg)
	}
	if !format.Changed([]byte("a=[2x2;1;bool];\na*[0..4;2];"), prog) {
		t.Fatal("compact source must differ from canonical form")
	}
	if format.Changed([]byte(format.Program(prog)), prog) {
		t.Fatal("canonical source reported as changed")
	}
	if ok, _ := format.CheckRoundTrip(nil); ok {
		t.Fatal("nil program must fail the check")
	}
}
