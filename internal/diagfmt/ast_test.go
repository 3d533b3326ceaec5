package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"tensa/internal/parser"
	"tensa/internal/source"
)

func TestFormatASTPretty(t *testing.T) {
	prog, err := parser.ParseString("a = [2 x 3; 0];\na * [0..4; 2];")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, prog, nil); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"Program (span: span(0-30))",
		"├─ Stmt[0][Assign]: a (span: span(0-15))",
		"│  └─ Expr[Fill]: 2 x 3; 0; f32 (span: span(4-14))",
		"└─ Stmt[1][Expr] (span: span(16-30))",
		"   └─ Expr[Binary]: * (span: span(16-29))",
		"      ├─ Expr[Variable]: a (span: span(16-17))",
		"      └─ Expr[Range]: 0..4; 2 (span: span(20-29))",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("unexpected outline:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatASTPrettyResolvesLines(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.tsa", []byte("x = [1; 1];\nx;\n"))
	prog, err := parser.Parse(fs.Get(id))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := FormatASTPretty(&buf, prog, fs); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Program demo.tsa (span: 1:1-3:1)") {
		t.Fatalf("unexpected header:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "Expr[Variable]: x (span: 2:1-2:2)") {
		t.Fatalf("variable line not resolved:\n%s", buf.String())
	}
}

func TestFormatASTTree(t *testing.T) {
	prog, err := parser.ParseString("a * b;")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := FormatASTTree(&buf, prog, nil); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Program", "Stmt[0][Expr]", "Expr[Binary]: *", "Expr[Variable]: a", "Expr[Variable]: b", "/", "\\"} {
		if !strings.Contains(out, want) {
			t.Errorf("tree lacks %q:\n%s", want, out)
		}
	}
}

func TestFormatASTJSON(t *testing.T) {
	prog, err := parser.ParseString("[2..20;2];")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := FormatASTJSON(&buf, prog); err != nil {
		t.Fatal(err)
	}

	var root ASTNodeOutput
	if err := json.Unmarshal(buf.Bytes(), &root); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if root.Type != "Program" || len(root.Children) != 1 {
		t.Fatalf("unexpected root: %+v", root)
	}
	rng := root.Children[0].Children[0]
	if rng.Kind != "Range" {
		t.Fatalf("kind = %q", rng.Kind)
	}
	// числа из JSON приходят как float64
	if rng.Fields["start"] != float64(2) || rng.Fields["stop"] != float64(20) || rng.Fields["step"] != float64(2) {
		t.Fatalf("fields = %v", rng.Fields)
	}
}

func TestFormatASTNil(t *testing.T) {
	if err := FormatASTJSON(&bytes.Buffer{}, nil); err == nil {
		t.Fatal("expected error for nil program")
	}
}

func TestRenderTreeLayout(t *testing.T) {
	block := renderTree(&treeNode{
		label:    "*",
		children: []*treeNode{{label: "a"}, {label: "b"}},
	})
	want := []string{
		"  *  ",
		"/ | \\",
		"a   b",
	}
	if strings.Join(block.lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected layout:\n%s", strings.Join(block.lines, "\n"))
	}
	if block.root != 2 || block.width != 5 {
		t.Fatalf("root = %d, width = %d", block.root, block.width)
	}

	wide := renderTree(&treeNode{label: "Program", children: []*treeNode{{label: "x"}}})
	if wide.lines[2] != "   x   " {
		t.Fatalf("child not centered under a wide label: %q", wide.lines[2])
	}
}
