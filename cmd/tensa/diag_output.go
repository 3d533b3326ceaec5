package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tensa/internal/diag"
	"tensa/internal/diagfmt"
	"tensa/internal/driver"
	"tensa/internal/source"
)

// diagPrinter renders diagnostics in one of the supported formats.
type diagPrinter struct {
	format   string
	pathMode diagfmt.PathMode
	notes    bool
	color    bool
}

func newDiagPrinter(cmd *cobra.Command, format string, out *os.File) (*diagPrinter, error) {
	switch format {
	case "pretty", "json", "short":
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
	p := &diagPrinter{format: format, pathMode: diagfmt.PathModeAuto}

	if f := cmd.Flags().Lookup("path-mode"); f != nil {
		mode, err := diagfmt.ParsePathMode(f.Value.String())
		if err != nil {
			return nil, err
		}
		p.pathMode = mode
	}
	if f := cmd.Flags().Lookup("with-notes"); f != nil {
		withNotes, err := cmd.Flags().GetBool("with-notes")
		if err != nil {
			return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
		}
		p.notes = withNotes
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	// заметки несут длительности фаз
	p.notes = p.notes || timings

	p.color, err = useColor(cmd, out)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// print writes one bag. JSON output of several files goes through printAll.
func (p *diagPrinter) print(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	switch p.format {
	case "json":
		return diagfmt.JSON(w, bag, fs, p.jsonOpts())
	case "short":
		return diagfmt.Short(w, bag, fs, p.pathMode, p.notes)
	default:
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:     p.color,
			Context:   2,
			PathMode:  p.pathMode,
			ShowNotes: p.notes,
		})
		return nil
	}
}

// printAll writes the diagnostics of every file. JSON output is one object
// keyed by display path.
func (p *diagPrinter) printAll(w io.Writer, fs *source.FileSet, results []driver.FileResult) error {
	if p.format != "json" {
		for _, r := range results {
			if r.Bag.Len() == 0 {
				continue
			}
			if err := p.print(w, r.Bag, fs); err != nil {
				return err
			}
		}
		return nil
	}

	output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
	for _, r := range results {
		output[displayPath(fs, r)] = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, p.jsonOpts())
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		return fmt.Errorf("failed to encode diagnostics output: %w", err)
	}
	return nil
}

func (p *diagPrinter) jsonOpts() diagfmt.JSONOpts {
	return diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         p.pathMode,
		IncludeNotes:     p.notes,
	}
}

func displayPath(fs *source.FileSet, r driver.FileResult) string {
	if r.Result == nil {
		return r.Path
	}
	return r.Result.File.FormatPath("auto", fs.BaseDir())
}

func anyFailed(results []driver.FileResult) bool {
	for _, r := range results {
		if r.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// collectInputs expands a file or directory argument into source files.
func collectInputs(path string) ([]string, error) {
	files, err := driver.ListSources(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", driver.SourceExt, path)
	}
	return files, nil
}
