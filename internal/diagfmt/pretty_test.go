package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"tensa/internal/diag"
	"tensa/internal/source"
)

const sample = "a = [2 x 2; 0];\nb = [2 x 2; 0; i64];\na * b;\n"

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("/home/user/project/src/main.tsa", []byte(sample))
	fs.SetBaseDir("/home/user/project")

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(
		diag.TypIncompatibleDataTypes,
		source.Span{File: id, Start: 37, End: 42},
		"data types float32 and int64 cannot be combined",
	).WithLabel("here").WithNote(source.Span{File: id, Start: 20, End: 35}, "cannot be combined with a value of this data type"))
	return bag, fs
}

func TestPrettySnippet(t *testing.T) {
	bag, fs := sampleBag(t)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, PathMode: PathModeBasename, ShowNotes: true})

	want := strings.Join([]string{
		"main.tsa:3:1: ERROR TYP3001: data types float32 and int64 cannot be combined",
		" 2 | b = [2 x 2; 0; i64];",
		" 3 | a * b;",
		"   | ^~~~~ here",
		"  note: main.tsa:2:5: cannot be combined with a value of this data type",
		" 1 | a = [2 x 2; 0];",
		" 2 | b = [2 x 2; 0; i64];",
		"   |     ^~~~~~~~~~~~~~~",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrettyHidesNotes(t *testing.T) {
	bag, fs := sampleBag(t)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if strings.Contains(buf.String(), "note:") {
		t.Fatalf("notes printed without ShowNotes:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), " 2 |") {
		t.Fatalf("context printed with Context 0:\n%s", buf.String())
	}
}

func TestPrettyEmptyNoteSpan(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("main.tsa", []byte(sample))
	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{File: id}, "pipeline timings").
		WithNote(source.Span{File: id}, "parse: 0.10 ms"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})
	if !strings.Contains(buf.String(), "  note: parse: 0.10 ms\n") {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestPathModes(t *testing.T) {
	bag, fs := sampleBag(t)

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/main.tsa:3:1"},
		{"relative", PathModeRelative, "src/main.tsa:3:1"},
		{"basename", PathModeBasename, "main.tsa:3:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			if !strings.HasPrefix(buf.String(), tt.contains) {
				t.Errorf("expected output to start with %q, got:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := sampleBag(t)

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatal("escape codes without Color")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatal("no escape codes with Color")
	}
}

func TestPrettyWideRunes(t *testing.T) {
	fs := source.NewFileSet()
	src := "\t世界 = x;\n"
	id := fs.AddVirtual("wide.tsa", []byte(src))
	bag := diag.NewBag(0)
	// "x" starts after the tab, two wide runes and " = "
	start := uint32(strings.Index(src, "x")) //nolint:gosec // tiny
	bag.Add(diag.NewError(diag.SynUnexpectedInput, source.Span{File: id, Start: start, End: start + 1}, "bad"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("short output:\n%s", buf.String())
	}
	marker := lines[2]
	want := "   | " + strings.Repeat(" ", tabWidth+4+3) + "^"
	if marker != want {
		t.Fatalf("marker line = %q, want %q", marker, want)
	}
}

func TestShort(t *testing.T) {
	bag, fs := sampleBag(t)

	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, PathModeBasename, false); err != nil {
		t.Fatal(err)
	}
	want := "error TYP3001 main.tsa:3:1 data types float32 and int64 cannot be combined\n"
	if buf.String() != want {
		t.Fatalf("Short() = %q, want %q", buf.String(), want)
	}
}

func TestParsePathMode(t *testing.T) {
	for _, name := range []string{"auto", "absolute", "relative", "basename"} {
		mode, err := ParsePathMode(name)
		if err != nil {
			t.Fatalf("ParsePathMode(%q): %v", name, err)
		}
		if mode.String() != name {
			t.Errorf("round trip %q -> %q", name, mode.String())
		}
	}
	if _, err := ParsePathMode("weird"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
