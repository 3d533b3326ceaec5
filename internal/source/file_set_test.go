package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()

	id1 := fs.Add("test.tsa", []byte("a = [1..3];"), 0)
	id2 := fs.Add("test.tsa", []byte("b = [1..4];"), 0)
	if id1 == id2 {
		t.Fatal("expected a new FileID for the second Add")
	}

	latest, ok := fs.GetLatest("test.tsa")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest() = %d, %v; want %d", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "a = [1..3];" {
		t.Fatalf("old version lost: %q", got)
	}
	if fs.Get(FileID(42)) != nil {
		t.Fatal("unknown id must return nil")
	}
}

func TestAddVirtualNormalizes(t *testing.T) {
	fs := NewFileSet()

	raw := []byte{0xEF, 0xBB, 0xBF}
	raw = append(raw, []byte("a = [1..3];\r\nb = a;\r\n")...)
	id := fs.AddVirtual("mem.tsa", raw)
	file := fs.Get(id)

	if string(file.Content) != "a = [1..3];\nb = a;\n" {
		t.Fatalf("unexpected content %q", file.Content)
	}
	for _, flag := range []FileFlags{FileVirtual, FileHadBOM, FileNormalizedCRLF} {
		if file.Flags&flag == 0 {
			t.Errorf("flag %d not set", flag)
		}
	}
	if file.Flags&FileNormalizedNFC != 0 {
		t.Error("ASCII input must not be marked as NFC-normalized")
	}
}

func TestNormalizeNFC(t *testing.T) {
	// "e" + combining acute accent collapses into a single precomposed rune.
	content, flags := Normalize([]byte("cafe\u0301"))
	if string(content) != "caf\u00e9" {
		t.Fatalf("got %q", content)
	}
	if flags&FileNormalizedNFC == 0 {
		t.Fatal("expected FileNormalizedNFC")
	}
}

func TestResolveLineCol(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("pos.tsa", []byte("a;\nbb;\n\nc;"))

	tests := []struct {
		off  uint32
		want LineCol
	}{
		{0, LineCol{1, 1}},
		{2, LineCol{1, 3}}, // сам '\n' относится к первой строке
		{3, LineCol{2, 1}},
		{5, LineCol{2, 3}},
		{7, LineCol{3, 1}},
		{8, LineCol{4, 1}},
		{9, LineCol{4, 2}},
	}
	for _, tt := range tests {
		start, _ := fs.Resolve(Span{File: id, Start: tt.off, End: tt.off})
		if start != tt.want {
			t.Errorf("offset %d: got %+v, want %+v", tt.off, start, tt.want)
		}
	}
}

func TestGetLineAndSlice(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("lines.tsa", []byte("first\nsecond\nthird"))
	file := fs.Get(id)

	for i, want := range []string{"", "first", "second", "third", ""} {
		if got := file.GetLine(uint32(i)); got != want {
			t.Errorf("GetLine(%d) = %q, want %q", i, got, want)
		}
	}
	if got := file.Slice(Span{File: id, Start: 6, End: 12}); got != "second" {
		t.Errorf("Slice() = %q", got)
	}
	if got := file.Slice(Span{File: id, Start: 15, End: 100}); got != "ird" {
		t.Errorf("Slice() must clamp, got %q", got)
	}
	full := file.FullSpan()
	if full.Start != 0 || full.End != uint32(len(file.Content)) {
		t.Errorf("FullSpan() = %+v", full)
	}
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.tsa")
	if err := os.WriteFile(path, []byte("[0..10];\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	file := fs.Get(id)
	if string(file.Content) != "[0..10];\n" {
		t.Fatalf("content = %q", file.Content)
	}
	if file.Flags&FileVirtual != 0 {
		t.Fatal("disk files are not virtual")
	}

	if _, err := fs.Load(filepath.Join(dir, "missing.tsa")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestRelativePathOutsideBaseFallsBackToAbsolute(t *testing.T) {
	tmp := t.TempDir()

	baseDir := filepath.Join(tmp, "base")
	target := filepath.Join(tmp, "other", "file.tsa")

	got, err := RelativePath(target, baseDir)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	want := normalizePath(target)
	if got != want {
		t.Fatalf("expected absolute fallback %q, got %q", want, got)
	}
}

func TestRelativePathInsideBaseStaysRelative(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "nested", "file.tsa")

	got, err := RelativePath(target, tmp)
	if err != nil {
		t.Fatalf("RelativePath returned error: %v", err)
	}

	if want := "nested/file.tsa"; got != want {
		t.Fatalf("expected relative path %q, got %q", want, got)
	}
}

func TestLineStarts(t *testing.T) {
	fs := NewFileSet()
	file := fs.Get(fs.AddVirtual("trailing.tsa", []byte("a;\n")))
	if len(file.LineStarts) != 2 || file.LineStarts[1] != 3 {
		t.Fatalf("LineStarts = %v", file.LineStarts)
	}
	if got := file.GetLine(2); got != "" {
		t.Fatalf("line after the final newline = %q", got)
	}

	start, end := fs.Resolve(Span{File: 9, Start: 1, End: 2})
	if start != (LineCol{}) || end != (LineCol{}) {
		t.Fatalf("unknown file resolved to %+v %+v", start, end)
	}
}
