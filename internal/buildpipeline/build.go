// Package buildpipeline turns a set of source files into Go files on disk and
// reports per-file progress while doing so.
package buildpipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tensa/internal/diag"
	"tensa/internal/driver"
	"tensa/internal/source"
)

// BuildRequest configures one build.
type BuildRequest struct {
	Files []string
	// BaseDir keeps the layout of Files below it inside OutDir. Files outside
	// BaseDir, or every file when it is empty, are written flat.
	BaseDir  string
	OutDir   string
	Jobs     int
	Options  driver.Options
	Progress ProgressSink
}

// FileOutput is the outcome for one input file.
type FileOutput struct {
	Path string
	// OutputPath is empty when nothing was written.
	OutputPath string
	Result     *driver.Result
	Bag        *diag.Bag
}

// Failed reports whether the file produced an error diagnostic.
func (f FileOutput) Failed() bool {
	return f.Bag != nil && f.Bag.HasErrors()
}

// BuildResult captures per-file outcomes and stage timings.
type BuildResult struct {
	FileSet *source.FileSet
	Files   []FileOutput
	Timings Timings
}

// Failed returns the number of files with errors.
func (r BuildResult) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Failed() {
			n++
		}
	}
	return n
}

// Build generates Go sources for every file in req. Diagnostics never make
// Build return an error; they are reported per file in the result. Output is
// written whenever generation succeeded, even if type errors were reported.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if req.OutDir == "" {
		return result, fmt.Errorf("missing output directory")
	}

	var sink ProgressSink
	if req.Progress != nil {
		sink = &lockedSink{sink: req.Progress}
	}
	emitQueued(sink, req.Files)

	opts := req.Options
	opts.Stage = driver.StageGenerate

	var mu sync.Mutex
	observe := func(path string, ev driver.PhaseEvent) {
		stage, ok := stageOf(ev.Name)
		if !ok {
			return
		}
		switch ev.Status {
		case driver.PhaseStart:
			emitFile(sink, path, stage, StatusWorking, nil, 0)
		case driver.PhaseEnd:
			mu.Lock()
			result.Timings.Add(stage, ev.Elapsed)
			mu.Unlock()
		}
	}

	fileSet, results, err := driver.RunFiles(ctx, req.Files, req.Jobs, opts, observe)
	result.FileSet = fileSet
	if err != nil {
		emitStage(sink, req.Files, StageGenerate, StatusError, err, 0)
		return result, err
	}

	if err := os.MkdirAll(req.OutDir, 0o750); err != nil {
		err = fmt.Errorf("failed to create output dir: %w", err)
		emitStage(sink, req.Files, StageWrite, StatusError, err, 0)
		return result, err
	}

	writeStart := time.Now()
	result.Files = make([]FileOutput, 0, len(results))
	for _, fr := range results {
		out := FileOutput{Path: fr.Path, Result: fr.Result, Bag: fr.Bag}
		if fr.Result != nil && fr.Result.Output != nil {
			emitFile(sink, fr.Path, StageWrite, StatusWorking, nil, 0)
			target := OutputPath(req.OutDir, req.BaseDir, fr.Path)
			if err := writeOutput(target, fr.Result.Output); err != nil {
				out.Bag.Add(diag.NewError(diag.IOWriteFileError, fr.Result.Program.Span, err.Error()))
			} else {
				out.OutputPath = target
			}
		}
		if out.Failed() {
			emitFile(sink, fr.Path, StageWrite, StatusError, fmt.Errorf("%s has errors", fr.Path), 0)
		} else {
			emitFile(sink, fr.Path, StageWrite, StatusDone, nil, 0)
		}
		result.Files = append(result.Files, out)
	}
	result.Timings.Add(StageWrite, time.Since(writeStart))

	emitOverall(sink, StageWrite, StatusDone, nil, result.Timings.Total())
	return result, nil
}

// OutputPath returns where the Go source generated from src is written.
func OutputPath(outDir, baseDir, src string) string {
	rel := filepath.Base(src)
	if baseDir != "" {
		if r, err := filepath.Rel(baseDir, src); err == nil && r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) {
			rel = r
		}
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + ".go"
	return filepath.Join(outDir, rel)
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write build output %q: %w", path, err)
	}
	return nil
}

func emitQueued(sink ProgressSink, files []string) {
	if sink == nil {
		return
	}
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageParse, Status: StatusQueued})
	}
}

func emitFile(sink ProgressSink, file string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}

func emitOverall(sink ProgressSink, stage Stage, status Status, err error, elapsed time.Duration) {
	emitFile(sink, "", stage, status, err, elapsed)
}

func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	emitOverall(sink, stage, status, err, elapsed)
	for _, file := range files {
		emitFile(sink, file, stage, status, err, elapsed)
	}
}
