package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"tensa/internal/diag"
	"tensa/internal/source"
	"tensa/internal/trace"
)

// SourceExt is the extension of tensa source files.
const SourceExt = ".tsa"

// FileResult is the outcome of one file in RunFiles.
type FileResult struct {
	Path   string
	FileID source.FileID
	// Result is nil only when the file could not be loaded; Bag then holds
	// the I/O diagnostic.
	Result *Result
	Bag    *diag.Bag
}

// ListSources returns path itself when it is a file, otherwise every .tsa
// file below it, sorted.
func ListSources(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, SourceExt) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// RunFiles runs the pipeline over paths with at most jobs files in flight
// (GOMAXPROCS when jobs <= 0). Results keep the order of paths. observe, if
// set, receives the phase events of every file and must be safe for
// concurrent use.
func RunFiles(ctx context.Context, paths []string, jobs int, opts Options, observe func(path string, ev PhaseEvent)) (*source.FileSet, []FileResult, error) {
	runSpan := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "run files", trace.SpanFrom(ctx))
	defer runSpan.WithField("files", strconv.Itoa(len(paths))).End("")
	ctx = trace.WithSpan(ctx, runSpan.ID())

	// FileSet не потокобезопасен: загружаем всё заранее, дальше только чтение
	fileSet := source.NewFileSet()
	fileIDs := make([]source.FileID, len(paths))
	loadErrors := make([]error, len(paths))
	for i, path := range paths {
		fileIDs[i], loadErrors[i] = fileSet.Load(path)
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(paths))
	if len(paths) == 0 {
		return fileSet, results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if loadErr := loadErrors[i]; loadErr != nil {
				bag := diag.NewBag(opts.MaxDiagnostics)
				bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, "failed to load "+path+": "+loadErr.Error()))
				results[i] = FileResult{Path: path, Bag: bag}
				return nil
			}

			fileOpts := opts
			if observe != nil {
				fileOpts.Observer = func(ev PhaseEvent) { observe(path, ev) }
			}
			res, err := Run(gctx, fileSet, fileIDs[i], fileOpts)
			if err != nil {
				return err
			}
			// индекс i уникален для горутины, мьютекс не нужен
			results[i] = FileResult{Path: path, FileID: fileIDs[i], Result: res, Bag: res.Bag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
