// Package driver runs the tensa pipeline (load, parse, check, generate,
// print) for one file or for many files in parallel, collecting every
// finding into a diag.Bag.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tensa/internal/ast"
	"tensa/internal/codegen"
	"tensa/internal/diag"
	"tensa/internal/observ"
	"tensa/internal/parser"
	"tensa/internal/project"
	"tensa/internal/sema"
	"tensa/internal/source"
	"tensa/internal/trace"
)

// Stage определяет, до какой фазы доходит Run
type Stage string

const (
	StageParse    Stage = "parse"
	StageCheck    Stage = "check"
	StageGenerate Stage = "generate"
)

// Options configure one pipeline run.
type Options struct {
	Stage          Stage
	MaxDiagnostics int
	// Target is used by StageGenerate.
	Target           codegen.Target
	WarningsAsErrors bool
	EnableTimings    bool
	// Observer, if set, sees the start and end of every phase.
	Observer PhaseObserver
	// Cache, if set, short-circuits StageGenerate runs on unchanged input.
	Cache *DiskCache
}

// Result is everything one run produced. Program is nil when parsing
// failed; Output is nil unless generation succeeded.
type Result struct {
	FileSet *source.FileSet
	File    *source.File
	Program *ast.Program
	Bag     *diag.Bag
	Sema    *sema.Result
	Output  []byte
	Timing  *observ.Report
	// Cached is set when the result was restored from the disk cache.
	Cached bool
}

// Failed reports whether the run produced an error diagnostic.
func (r *Result) Failed() bool {
	return r.Bag.HasErrors()
}

// RunFile loads path into a fresh FileSet and runs the pipeline on it.
func RunFile(ctx context.Context, path string, opts Options) (*Result, error) {
	fs := source.NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return Run(ctx, fs, id, opts)
}

// Run executes the pipeline on a file already present in fs. The returned
// error is reserved for failures that are not diagnostics.
func Run(ctx context.Context, fs *source.FileSet, id source.FileID, opts Options) (*Result, error) {
	file := fs.Get(id)
	if file == nil {
		return nil, fmt.Errorf("file %d is not in the file set", id)
	}
	if opts.Stage == "" {
		opts.Stage = StageGenerate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &runner{
		opts:   opts,
		tracer: trace.FromContext(ctx),
		res: &Result{
			FileSet: fs,
			File:    file,
			Bag:     diag.NewBag(opts.MaxDiagnostics),
		},
	}
	if opts.EnableTimings {
		r.timer = observ.NewTimer()
	}
	fileSpan := trace.Begin(r.tracer, trace.ScopeFile, file.Path, trace.SpanFrom(ctx))
	r.parent = fileSpan.ID()
	if r.parent == 0 {
		// на уровне phase файловых спанов нет, проходы висят на run files
		r.parent = trace.SpanFrom(ctx)
	}

	err := r.run()
	fileSpan.WithField("diags", fmt.Sprint(r.res.Bag.Len())).End("")
	if err != nil {
		return nil, err
	}
	return r.res, nil
}

type runner struct {
	opts   Options
	tracer trace.Tracer
	parent uint64
	timer  *observ.Timer
	res    *Result
}

// phase runs fn as the named pass with tracing, timing and observer events.
func (r *runner) phase(name Phase, fn func() (string, error)) error {
	span := trace.Begin(r.tracer, trace.ScopePass, string(name), r.parent)
	var done func(string)
	if r.timer != nil {
		done = r.timer.Track(string(name))
	}
	if r.opts.Observer != nil {
		r.opts.Observer(PhaseEvent{Name: name, Status: PhaseStart})
	}

	start := time.Now()
	note, err := fn()

	span.End(note)
	elapsed := time.Since(start)
	if r.timer != nil {
		done(note)
		phases := r.timer.Phases()
		elapsed = phases[len(phases)-1].Dur
	}
	if r.opts.Observer != nil {
		r.opts.Observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: elapsed})
	}
	return err
}

func (r *runner) run() error {
	res := r.res
	key, useCache := r.cacheKey()
	var target project.Digest
	if useCache {
		target = project.TargetDigest(r.opts.Target)
		var payload DiskPayload
		ok, err := r.opts.Cache.Get(key, &payload)
		if err == nil && ok && payload.matches(res.File, target) {
			payload.restore(res)
			trace.Point(r.tracer, trace.ScopePass, "cache hit", res.File.Path, r.parent)
			return nil
		}
	}

	if err := r.phase(PhaseParse, r.parse); err != nil {
		return err
	}
	if res.Program != nil && r.opts.Stage != StageParse {
		_ = r.phase(PhaseCheck, r.check)
		if r.opts.Stage == StageGenerate {
			var frags codegen.Fragments
			err := r.phase(PhaseGenerate, func() (string, error) {
				var note string
				frags, note = r.generate()
				return note, nil
			})
			if err != nil {
				return err
			}
			if frags != nil {
				if err := r.phase(PhasePrint, func() (string, error) { return r.print(frags) }); err != nil {
					return err
				}
			}
		}
	}

	res.Bag.Sort()
	if r.opts.WarningsAsErrors {
		res.Bag.Transform(func(d diag.Diagnostic) diag.Diagnostic {
			if d.Severity == diag.SevWarning {
				d.Severity = diag.SevError
			}
			return d
		})
	}
	if useCache {
		if err := r.opts.Cache.Put(key, newDiskPayload(res, target)); err != nil {
			trace.Point(r.tracer, trace.ScopePass, "cache write failed", err.Error(), r.parent)
		}
	}
	if r.timer != nil {
		report := r.timer.Report()
		res.Timing = &report
		appendTimingDiagnostic(res.Bag, r.timer, res.File)
	}
	return nil
}

func (r *runner) parse() (string, error) {
	prog, err := parser.Parse(r.res.File)
	if err != nil {
		var perr *parser.Error
		if !errors.As(err, &perr) {
			return "", err
		}
		reportSyntax(diag.BagReporter{Bag: r.res.Bag}, perr)
		return "failed", nil
	}
	r.res.Program = prog
	return fmt.Sprintf("stmts=%d", len(prog.Stmts)), nil
}

func (r *runner) check() (string, error) {
	reporter := diag.NewDedupReporter(diag.MultiReporter{
		diag.BagReporter{Bag: r.res.Bag},
		traceReporter{tracer: r.tracer, parent: r.parent},
	})
	result := sema.Check(r.res.Program, sema.Options{
		Reporter:   reporter,
		Tracer:     r.tracer,
		ParentSpan: r.parent,
	})
	r.res.Sema = &result
	return fmt.Sprintf("errors=%d", len(result.Errors)), nil
}

// generate runs regardless of type errors; a generation failure becomes a
// diagnostic and stops the pipeline.
func (r *runner) generate() (codegen.Fragments, string) {
	frags, err := codegen.Generate(r.res.Program, r.opts.Target)
	if err != nil {
		var gerr *codegen.Error
		if errors.As(err, &gerr) {
			r.res.Bag.Add(gerr.Diagnostic())
		} else {
			r.res.Bag.Add(diag.NewError(diag.GenMalformedOutput, r.res.Program.Span, err.Error()))
		}
		return nil, "failed"
	}
	return frags, fmt.Sprintf("fragments=%d", len(frags))
}

func (r *runner) print(frags codegen.Fragments) (string, error) {
	out, err := codegen.Print(frags, r.opts.Target)
	if err != nil {
		var perr *codegen.PrintError
		if !errors.As(err, &perr) {
			return "", err
		}
		r.res.Bag.Add(perr.Diagnostic())
		return "failed", nil
	}
	r.res.Output = out
	return fmt.Sprintf("bytes=%d", len(out)), nil
}
