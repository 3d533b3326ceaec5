package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tensa/internal/codegen"
	"tensa/internal/diag"
	"tensa/internal/trace"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	return path
}

func defaultOpts() Options {
	return Options{Stage: StageGenerate, Target: codegen.DefaultTarget()}
}

func codes(bag *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range bag.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestRunFileGenerates(t *testing.T) {
	path := writeSource(t, t.TempDir(), "ok.tsa", "a = [2 x 3; 0];\nb = [3 x 4; 1];\na * b;\n")

	res, err := RunFile(context.Background(), path, defaultOpts())
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Zero(t, res.Bag.Len())
	require.NotNil(t, res.Program)
	require.NotNil(t, res.Sema)
	assert.Contains(t, string(res.Output), "a := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)")
	assert.Contains(t, string(res.Output), "_ = a * b")
}

func TestRunFileMissing(t *testing.T) {
	_, err := RunFile(context.Background(), filepath.Join(t.TempDir(), "nope.tsa"), defaultOpts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load")
}

func TestTypeErrorsDoNotBlockGeneration(t *testing.T) {
	path := writeSource(t, t.TempDir(), "bad.tsa", "a = [2 x 4 x 5; 0];\nb = [2 x 5 x 3; 0; i64];\na * b;\nc = [2 x 3; 0];\nc * c;\n")

	res, err := RunFile(context.Background(), path, defaultOpts())
	require.NoError(t, err)
	assert.True(t, res.Failed())
	assert.Equal(t, []diag.Code{diag.TypIncompatibleDataTypes, diag.TypCannotMultiply}, codes(res.Bag))
	assert.NotEmpty(t, res.Output)
}

func TestParseErrorBecomesDiagnostic(t *testing.T) {
	src := "a = [2 x 3; 0];\nb = [1 x 2 0];\n"
	path := writeSource(t, t.TempDir(), "syntax.tsa", src)

	res, err := RunFile(context.Background(), path, defaultOpts())
	require.NoError(t, err)
	assert.Nil(t, res.Program)
	assert.Nil(t, res.Sema)
	assert.Nil(t, res.Output)
	require.Equal(t, []diag.Code{diag.SynUnexpectedInput}, codes(res.Bag))

	d := res.Bag.Items()[0]
	assert.Equal(t, "0", src[d.Primary.Start:d.Primary.End])
	assert.Contains(t, d.Message, "expected")
	assert.Equal(t, "unexpected '0'", d.Label)
}

func TestInvalidLiteral(t *testing.T) {
	path := writeSource(t, t.TempDir(), "lit.tsa", "[2; 99999999999];")

	res, err := RunFile(context.Background(), path, defaultOpts())
	require.NoError(t, err)
	require.Equal(t, []diag.Code{diag.SynInvalidLiteral}, codes(res.Bag))
	assert.Contains(t, res.Bag.Items()[0].Message, "does not fit in int32")
}

func TestGenerationFailures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"empty shape", "[; 3];", diag.GenEmptyShape},
		{"reserved", "backend = [1; 1];", diag.GenReservedName},
		{"keyword", "go = [1; 1];", diag.GenMalformedOutput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, t.TempDir(), "gen.tsa", tt.src)
			res, err := RunFile(context.Background(), path, defaultOpts())
			require.NoError(t, err)
			assert.Equal(t, []diag.Code{tt.code}, codes(res.Bag))
			assert.Nil(t, res.Output)
		})
	}
}

func TestStageCheckSkipsGeneration(t *testing.T) {
	path := writeSource(t, t.TempDir(), "c.tsa", "[; 3];")

	opts := defaultOpts()
	opts.Stage = StageCheck
	res, err := RunFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.Zero(t, res.Bag.Len())
	assert.Nil(t, res.Output)
	assert.NotNil(t, res.Sema)

	opts.Stage = StageParse
	res, err = RunFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.NotNil(t, res.Program)
	assert.Nil(t, res.Sema)
}

func TestRepeatedTypeErrorsAreKept(t *testing.T) {
	src := "a = [0..3];\na * [2 x 2; 0; i64];\na * [2 x 2; 1; i64];\n"
	path := writeSource(t, t.TempDir(), "twice.tsa", src)

	res, err := RunFile(context.Background(), path, defaultOpts())
	require.NoError(t, err)
	require.NotNil(t, res.Sema)
	require.Len(t, res.Sema.Errors, 2)
	require.Equal(t, len(res.Sema.Errors), res.Bag.Len())

	var operands []string
	for _, d := range res.Bag.Items() {
		require.Len(t, d.Notes, 1)
		operands = append(operands, src[d.Notes[0].Span.Start:d.Notes[0].Span.End])
	}
	assert.Equal(t, []string{"[2 x 2; 0; i64]", "[2 x 2; 1; i64]"}, operands)
}

func TestTimingsAndObserver(t *testing.T) {
	path := writeSource(t, t.TempDir(), "t.tsa", "[0..10; 2];")

	var names []Phase
	opts := defaultOpts()
	opts.EnableTimings = true
	opts.Observer = func(ev PhaseEvent) {
		if ev.Status == PhaseEnd {
			names = append(names, ev.Name)
		}
	}
	res, err := RunFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.Equal(t, Phases, names)
	require.NotNil(t, res.Timing)
	assert.Len(t, res.Timing.Phases, 4)
	assert.Equal(t, []diag.Code{diag.ObsTimings}, codes(res.Bag))
	assert.False(t, res.Failed())
}

func TestTracerFromContext(t *testing.T) {
	path := writeSource(t, t.TempDir(), "tr.tsa", "x;\nc = [2 x 3; 0];\nc * c;\n")
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	ctx := trace.WithTracer(context.Background(), ring)

	_, err := RunFile(ctx, path, defaultOpts())
	require.NoError(t, err)

	var seen []string
	for _, ev := range ring.Snapshot() {
		seen = append(seen, ev.Scope.String()+":"+ev.Name)
	}
	assert.Contains(t, seen, "file:"+path)
	assert.Contains(t, seen, "pass:check")
	assert.Contains(t, seen, "node:unbound variable")
	assert.Contains(t, seen, "node:diagnostic")
}

func TestDiskCache(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	path := writeSource(t, t.TempDir(), "cached.tsa", "a = [2 x 2; 0];\na * [0..3];\n")

	opts := defaultOpts()
	opts.Cache = cache
	first, err := RunFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := RunFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Output, second.Output)
	assert.Equal(t, codes(first.Bag), codes(second.Bag))

	// another target profile misses
	opts.Target.Operators = codegen.OperatorsMethods
	third, err := RunFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Contains(t, string(third.Output), ".MatMul(")

	removed, err := cache.DropAll()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	opts.Target = codegen.DefaultTarget()
	fourth, err := RunFile(context.Background(), path, opts)
	require.NoError(t, err)
	assert.False(t, fourth.Cached)
}

func TestRunFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeSource(t, dir, "a.tsa", "[2 x 2; 0];"),
		filepath.Join(dir, "missing.tsa"),
		writeSource(t, dir, "c.tsa", "[; 1];"),
	}

	var mu sync.Mutex
	events := map[string]int{}
	observe := func(path string, ev PhaseEvent) {
		mu.Lock()
		defer mu.Unlock()
		events[path]++
	}

	_, results, err := RunFiles(context.Background(), paths, 2, defaultOpts(), observe)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, paths[0], results[0].Path)
	assert.Zero(t, results[0].Bag.Len())
	assert.NotEmpty(t, results[0].Result.Output)

	assert.Nil(t, results[1].Result)
	assert.Equal(t, []diag.Code{diag.IOLoadFileError}, codes(results[1].Bag))

	assert.Equal(t, []diag.Code{diag.GenEmptyShape}, codes(results[2].Bag))

	assert.Equal(t, 8, events[paths[0]])
	assert.Zero(t, events[paths[1]])
}

func TestRunFilesCancelled(t *testing.T) {
	path := writeSource(t, t.TempDir(), "x.tsa", "x;")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := RunFiles(ctx, []string{path}, 1, defaultOpts(), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestListSources(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "b.tsa", "x;")
	writeSource(t, dir, "nested/a.tsa", "x;")
	writeSource(t, dir, "notes.txt", "")

	files, err := ListSources(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.tsa"), filepath.Join(dir, "nested", "a.tsa")}, files)

	single, err := ListSources(files[0])
	require.NoError(t, err)
	assert.Equal(t, files[:1], single)
}
