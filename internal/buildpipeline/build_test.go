package buildpipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tensa/internal/codegen"
	"tensa/internal/diag"
	"tensa/internal/driver"
)

type recordSink struct {
	events []Event
}

func (s *recordSink) OnEvent(evt Event) { s.events = append(s.events, evt) }

func (s *recordSink) forFile(file string) []Event {
	var out []Event
	for _, ev := range s.events {
		if ev.File == file {
			out = append(out, ev)
		}
	}
	return out
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildWritesSources(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "gen")
	files := []string{
		writeFile(t, filepath.Join(src, "a.tsa"), "a = [2 x 3; 0];\na * [3 x 2; 1];\n"),
		writeFile(t, filepath.Join(src, "nested", "b.tsa"), "[0..8; 2];\n"),
		writeFile(t, filepath.Join(src, "bad.tsa"), "[; 0];\n"),
		writeFile(t, filepath.Join(src, "typed.tsa"), "[2 x 2; 0] * [2 x 2; 0; i64];\n"),
	}

	sink := &recordSink{}
	res, err := Build(context.Background(), &BuildRequest{
		Files:    files,
		BaseDir:  src,
		OutDir:   out,
		Jobs:     2,
		Options:  driver.Options{Target: codegen.DefaultTarget()},
		Progress: sink,
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 4)
	assert.Equal(t, 2, res.Failed())

	assert.Equal(t, filepath.Join(out, "a.go"), res.Files[0].OutputPath)
	assert.Equal(t, filepath.Join(out, "nested", "b.go"), res.Files[1].OutputPath)
	assert.Empty(t, res.Files[2].OutputPath)
	// type errors do not stop generation
	assert.Equal(t, filepath.Join(out, "typed.go"), res.Files[3].OutputPath)
	assert.True(t, res.Files[3].Failed())
	assert.Equal(t, diag.TypIncompatibleDataTypes, res.Files[3].Bag.Items()[0].Code)

	data, err := os.ReadFile(res.Files[1].OutputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "// Code generated by tensa. DO NOT EDIT.")
	assert.Contains(t, string(data), "tensor.ArangeStep[int64](0, 8, 2, backend)")

	_, err = os.Stat(filepath.Join(out, "bad.go"))
	assert.True(t, os.IsNotExist(err))

	assert.True(t, res.Timings.Has(StageParse))
	assert.True(t, res.Timings.Has(StageWrite))
}

func TestBuildProgressEvents(t *testing.T) {
	src := t.TempDir()
	good := writeFile(t, filepath.Join(src, "good.tsa"), "[2; 1];\n")
	bad := writeFile(t, filepath.Join(src, "bad.tsa"), "[2; 1]\n")

	sink := &recordSink{}
	_, err := Build(context.Background(), &BuildRequest{
		Files:    []string{good, bad},
		OutDir:   t.TempDir(),
		Jobs:     1,
		Options:  driver.Options{Target: codegen.DefaultTarget()},
		Progress: sink,
	})
	require.NoError(t, err)

	var stages []Stage
	for _, ev := range sink.forFile(good) {
		stages = append(stages, ev.Stage)
	}
	assert.Equal(t, []Stage{StageParse, StageParse, StageCheck, StageGenerate, StagePrint, StageWrite, StageWrite}, stages)
	goodEvents := sink.forFile(good)
	assert.Equal(t, StatusQueued, goodEvents[0].Status)
	assert.Equal(t, StatusDone, goodEvents[len(goodEvents)-1].Status)

	badEvents := sink.forFile(bad)
	last := badEvents[len(badEvents)-1]
	assert.Equal(t, StatusError, last.Status)
	assert.Error(t, last.Err)

	overall := sink.events[len(sink.events)-1]
	assert.Empty(t, overall.File)
	assert.Equal(t, StatusDone, overall.Status)
}

func TestBuildRequestValidation(t *testing.T) {
	_, err := Build(context.Background(), nil)
	require.Error(t, err)

	_, err = Build(context.Background(), &BuildRequest{Files: []string{"x.tsa"}})
	require.EqualError(t, err, "missing output directory")
}

func TestOutputPath(t *testing.T) {
	base := filepath.Join("src", "models")
	tests := []struct {
		name string
		base string
		src  string
		want string
	}{
		{"flat", "", filepath.Join("src", "models", "mlp.tsa"), filepath.Join("gen", "mlp.go")},
		{"nested", base, filepath.Join(base, "vision", "conv.tsa"), filepath.Join("gen", "vision", "conv.go")},
		{"outside base", base, filepath.Join("other", "x.tsa"), filepath.Join("gen", "x.go")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath("gen", tt.base, tt.src))
		})
	}
}

func TestTimings(t *testing.T) {
	var tm Timings
	assert.False(t, tm.Has(StageParse))
	assert.Zero(t, tm.Total())
	tm.Add(StageParse, 2)
	tm.Add(StageParse, 3)
	tm.Add(StageCheck, 4)
	assert.True(t, tm.Has(StageCheck))
	assert.Equal(t, int64(5), int64(tm.Duration(StageParse)))
	assert.Equal(t, int64(9), int64(tm.Total()))
}

func TestStageOrder(t *testing.T) {
	for i := 1; i < len(Stages); i++ {
		assert.Less(t, Stages[i-1].Progress(), Stages[i].Progress())
	}
	assert.Less(t, StageWrite.Progress(), 1.0)
	assert.Zero(t, Stage("link").Progress())

	_, ok := stageOf("write")
	assert.False(t, ok)
	stage, ok := stageOf("print")
	assert.True(t, ok)
	assert.Equal(t, StagePrint, stage)
	for _, phase := range driver.Phases {
		_, ok := stageOf(phase)
		assert.True(t, ok, "phase %s has no stage", phase)
	}
	assert.True(t, StatusError.Finished())
	assert.False(t, StatusWorking.Finished())
}
